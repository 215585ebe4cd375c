package controllers

import (
	"InnerCompassGo/models"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserFinder 查询用户
type UserFinder interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

type UserController struct {
	users UserFinder
}

func NewUserController(users UserFinder) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetUser(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	user, err := uc.users.GetUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "用户未找到")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": models.UserResponse{
			ID:       user.ID,
			Username: user.GetDisplayName(),
			Email:    user.Email,
		},
	})
}
