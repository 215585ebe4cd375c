package controllers

import (
	"InnerCompassGo/config"
	"InnerCompassGo/repositories"
	"InnerCompassGo/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// currentUID 从认证中间件写入的上下文中读取用户ID
func currentUID(c *gin.Context) (string, bool) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return "", false
	}
	return uid, true
}

// respondError 将服务层错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	default:
		config.Logger.Errorw(msg, "error", err, "uid", c.GetString("uid"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
