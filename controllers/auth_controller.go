package controllers

import (
	"InnerCompassGo/config"
	"InnerCompassGo/models"
	"InnerCompassGo/utils"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UserCreator 创建用户
type UserCreator interface {
	CreateUser(ctx context.Context, user *models.User) error
}

// AuthController 认证控制器
type AuthController struct {
	users UserCreator
}

func NewAuthController(users UserCreator) *AuthController {
	return &AuthController{users: users}
}

// CreateTestUser 创建测试用户，可通过 ?timezone= 指定时区
func (ac *AuthController) CreateTestUser(c *gin.Context) {
	timezone := c.Query("timezone")
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的时区"})
			return
		}
	}

	id := utils.GenerateID()
	testUser := models.User{
		ID:         id,
		Username:   "test_user_" + id[:8],
		Email:      "test_" + id[:8] + "@example.com",
		IsTestUser: true,
		Timezone:   timezone,
	}

	if err := ac.users.CreateUser(c.Request.Context(), &testUser); err != nil {
		config.Logger.Errorw("用户创建失败", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建测试用户失败"})
		return
	}

	// 生成 JWT
	token, err := utils.GenerateToken(testUser.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}

	config.Logger.Infow("创建测试用户",
		"userID", testUser.ID,
		"username", testUser.Username,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": models.UserResponse{
			ID:       testUser.ID,
			Username: testUser.Username,
			Email:    testUser.Email,
		},
	})
}
