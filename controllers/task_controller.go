package controllers

import (
	"InnerCompassGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	wellness *services.WellnessService
}

func NewTaskController(wellness *services.WellnessService) *TaskController {
	return &TaskController{wellness: wellness}
}

// GetTasks 当天任务，没有时自动生成
func (tc *TaskController) GetTasks(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	tasks, err := tc.wellness.CurrentTasks(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取任务失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (tc *TaskController) ToggleTask(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.wellness.ToggleTask(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err, "任务不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (tc *TaskController) RegenerateTasks(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	tasks, err := tc.wellness.RegenerateTasks(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "重新生成任务失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
