package models

import (
	"strings"
	"time"
)

// TaskCategory 任务类别
type TaskCategory string

const (
	CategoryWellness    TaskCategory = "Wellness"
	CategoryMindfulness TaskCategory = "Mindfulness"
	CategoryActivity    TaskCategory = "Activity"
	CategorySocial      TaskCategory = "Social"
	CategorySleep       TaskCategory = "Sleep"
	CategoryNutrition   TaskCategory = "Nutrition"
)

var taskCategories = []TaskCategory{
	CategoryWellness, CategoryMindfulness, CategoryActivity,
	CategorySocial, CategorySleep, CategoryNutrition,
}

// ParseTaskCategory 大小写不敏感，返回规范写法
func ParseTaskCategory(s string) (TaskCategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range taskCategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// TaskPriority 任务优先级
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// ParseTaskPriority 大小写不敏感
func ParseTaskPriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, true
	}
	return "", false
}

const (
	TaskTitleMaxLen       = 60
	TaskDescriptionMaxLen = 150
	// TaskBatchSize 每次生成固定4个任务
	TaskBatchSize = 4
)

// Task 推荐任务，每批4个，重新生成时旧批次标记为 superseded
type Task struct {
	ID          string       `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID      string       `gorm:"type:varchar(50);index:idx_tasks_user_batch" json:"user_id"`
	BatchID     string       `gorm:"type:varchar(50);index:idx_tasks_user_batch" json:"batchId"`
	Title       string       `gorm:"type:varchar(60)" json:"title"`
	Description string       `gorm:"type:varchar(150)" json:"description"`
	Category    TaskCategory `gorm:"type:varchar(20)" json:"category"`
	Priority    TaskPriority `gorm:"type:varchar(10)" json:"priority"`
	IsCompleted bool         `gorm:"default:false" json:"isCompleted"`
	Source      string       `gorm:"type:varchar(20)" json:"source"` // generative / fallback
	Superseded  bool         `gorm:"default:false;index" json:"superseded"`
	AssignedAt  time.Time    `json:"assignedAt"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
}

func (Task) TableName() string {
	return "wellness_tasks"
}
