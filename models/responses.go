package models

// JournalSubmissionResponse 提交日记后的完整结果
// Degraded 为 true 时日记已保存，但评分或任务未能刷新
type JournalSubmissionResponse struct {
	Entry    JournalEntry  `json:"entry"`
	Score    ScoreSnapshot `json:"score"`
	Tasks    []Task        `json:"tasks"`
	Degraded bool          `json:"degraded,omitempty"`
}

// DashboardResponse 仪表盘
type DashboardResponse struct {
	Score            int          `json:"score"`
	ComplianceRate   int          `json:"complianceRate"`
	WeeklyBuckets    []int        `json:"weeklyBuckets"`
	MoodDistribution map[Mood]int `json:"moodDistribution"`
}

// StreakResponse 连续记录与目标进度
type StreakResponse struct {
	StreakState
	Goals GoalProgress `json:"goals"`
}

// WellnessReportResponse 雷达图
type WellnessReportResponse struct {
	Score      int                 `json:"score"`
	Dimensions []WellnessDimension `json:"dimensions"`
}

// UserResponse 用户响应结构体
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
