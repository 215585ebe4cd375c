package controllers

import (
	"InnerCompassGo/config"
	"InnerCompassGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportController 评分、仪表盘、连续记录和雷达图
type ReportController struct {
	wellness *services.WellnessService
}

func NewReportController(wellness *services.WellnessService) *ReportController {
	return &ReportController{wellness: wellness}
}

func (rc *ReportController) GetScore(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	snapshot, err := rc.wellness.CurrentScore(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取评分失败")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (rc *ReportController) GetDashboard(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	dashboard, err := rc.wellness.Dashboard(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取仪表盘失败")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (rc *ReportController) GetStreaks(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	streaks, err := rc.wellness.Streaks(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取连续记录失败")
		return
	}
	c.JSON(http.StatusOK, streaks)
}

func (rc *ReportController) GetWellnessReport(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	report, err := rc.wellness.WellnessReport(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取报告失败")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Rescore 内部接口，强制重新评分
func (rc *ReportController) Rescore(c *gin.Context) {
	uid := c.Param("id")
	config.Logger.Infow("内部接口调用：重新评分",
		"sourceIP", c.ClientIP(),
		"uid", uid,
	)

	snapshot, err := rc.wellness.Rescore(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "重新评分失败")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
