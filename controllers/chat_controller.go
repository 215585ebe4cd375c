package controllers

import (
	"InnerCompassGo/config"
	"InnerCompassGo/models"
	"InnerCompassGo/services"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService *services.ChatService
	wellness    *services.WellnessService
}

func NewChatController(chatService *services.ChatService, wellness *services.WellnessService) *ChatController {
	return &ChatController{
		chatService: chatService,
		wellness:    wellness,
	}
}

// SendMessage 流式返回陪伴回复，结束后后台更新摘要
func (c *ChatController) SendMessage(ctx *gin.Context) {
	uid, ok := currentUID(ctx)
	if !ok {
		return
	}

	var chatRequest models.ChatRequest
	if err := ctx.ShouldBindJSON(&chatRequest); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	reqCtx := ctx.Request.Context()
	historySummary := c.chatService.HistorySummary(reqCtx, uid)

	var score *models.ScoreSnapshot
	if snapshot, err := c.wellness.CurrentScore(reqCtx, uid); err == nil {
		score = &snapshot
	} else {
		config.Logger.Warnw("获取评分失败，聊天不带评分上下文", "error", err, "uid", uid)
	}

	stream, err := c.chatService.GenerateCompanionResponse(reqCtx, chatRequest.Message, historySummary, score)
	if err != nil {
		if errors.Is(err, services.ErrCompanionUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process chat: " + err.Error(),
		})
		return
	}

	// 设置流式响应头
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no") // 禁用 Nginx 缓冲

	var fullResponse strings.Builder
	for chunk := range stream {
		if _, err := ctx.Writer.Write([]byte(chunk)); err != nil {
			config.Logger.Warnw("写入流式响应失败", "error", err, "uid", uid)
			// 继续读取直到生成协程退出
			continue
		}
		ctx.Writer.Flush()
		fullResponse.WriteString(chunk)
	}

	if fullResponse.Len() > 0 {
		c.chatService.UpdateSummaryAsync(uid, chatRequest.Message, fullResponse.String(), historySummary)
	}
}
