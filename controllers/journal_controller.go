package controllers

import (
	"InnerCompassGo/models"
	"InnerCompassGo/services"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type JournalController struct {
	wellness *services.WellnessService
}

func NewJournalController(wellness *services.WellnessService) *JournalController {
	return &JournalController{wellness: wellness}
}

// CreateEntry 提交日记，返回新的评分和当天任务
func (jc *JournalController) CreateEntry(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := jc.wellness.SubmitJournalEntry(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err, "日记保存失败")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListEntries 支持 ?since=RFC3339 或 ?limit=
func (jc *JournalController) ListEntries(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var since time.Time
	if s := c.Query("since"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的时间格式"})
			return
		}
		since = parsed
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的limit"})
			return
		}
		limit = n
	}

	entries, err := jc.wellness.ListJournal(c.Request.Context(), uid, since, limit)
	if err != nil {
		respondError(c, err, "获取日记失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
