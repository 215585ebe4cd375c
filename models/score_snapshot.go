package models

import "time"

// Confidence 评分置信度
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence 非法值返回 false
func ParseConfidence(s string) (Confidence, bool) {
	switch c := Confidence(s); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c, true
	}
	return "", false
}

// ScoreSnapshot 用户当前心理健康分，每个用户只有一条，重新计算时整体覆盖
type ScoreSnapshot struct {
	UserID     string     `gorm:"type:varchar(50);primaryKey" json:"user_id"`
	Score      int        `json:"score"`
	Reasoning  string     `gorm:"type:text" json:"reasoning"`
	Confidence Confidence `gorm:"type:varchar(10)" json:"confidence"`
	Source     string     `gorm:"type:varchar(20)" json:"source"` // generative / fallback
	ComputedAt time.Time  `json:"computedAt"`
}

func (ScoreSnapshot) TableName() string {
	return "score_snapshots"
}

// WellnessDimension 雷达图维度，不落库
type WellnessDimension struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// StreakState 连续记录天数，不落库
type StreakState struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

// GoalProgress 周/月目标完成度
type GoalProgress struct {
	WeeklyCount       int `json:"weeklyCount"`
	WeeklyTarget      int `json:"weeklyTarget"`
	WeeklyPercentage  int `json:"weeklyPercentage"`
	MonthlyCount      int `json:"monthlyCount"`
	MonthlyTarget     int `json:"monthlyTarget"`
	MonthlyPercentage int `json:"monthlyPercentage"`
}
