package services

import (
	"InnerCompassGo/models"
	"fmt"
	"math"
)

const (
	scoringWindow  = 7
	moodTrendDepth = 3
)

// RecencyTier 距上次记录不超过 MaxDays 天时加 Points 分
type RecencyTier struct {
	MaxDays int
	Points  float64
}

// ScoringWeights 兜底评分的启发式常量
type ScoringWeights struct {
	Base       float64
	Sentiment  float64
	Compliance float64
	Mood       float64
	Recency    []RecencyTier
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Base:       50,
		Sentiment:  40,
		Compliance: 0.30,
		Mood:       10,
		Recency: []RecencyTier{
			{MaxDays: 0, Points: 20},
			{MaxDays: 2, Points: 15},
			{MaxDays: 5, Points: 10},
			{MaxDays: 7, Points: 5},
		},
	}
}

// NoRecentEntry 表示没有任何历史记录
const NoRecentEntry = -1

// ScoringInput 评分输入，Entries 与 RecentMoods 均为时间倒序
type ScoringInput struct {
	Entries            []models.JournalEntry
	TaskCompletionRate int
	RecentMoods        []models.Mood
	DaysSinceLastEntry int
}

// FallbackScore 纯函数，不依赖任何外部调用，结果在 [0,100]
func FallbackScore(in ScoringInput, w ScoringWeights) int {
	var total float64

	entries := in.Entries
	if len(entries) > scoringWindow {
		entries = entries[:scoringWindow]
	}
	if len(entries) > 0 {
		var sum float64
		for _, e := range entries {
			sum += models.ClampUnit(e.Sentiment)
		}
		total += sum / float64(len(entries)) * w.Sentiment
	} else {
		total += w.Base
	}

	total += float64(clampInt(in.TaskCompletionRate, 0, 100)) * w.Compliance
	total += recencyPoints(in.DaysSinceLastEntry, w.Recency)

	moods := in.RecentMoods
	if len(moods) > moodTrendDepth {
		moods = moods[:moodTrendDepth]
	}
	positive := 0
	for _, m := range moods {
		if m.IsPositive() {
			positive++
		}
	}
	total += float64(positive) / moodTrendDepth * w.Mood

	return clampInt(int(math.Round(total)), 0, 100)
}

func recencyPoints(days int, tiers []RecencyTier) float64 {
	if days < 0 {
		return 0
	}
	for _, t := range tiers {
		if days <= t.MaxDays {
			return t.Points
		}
	}
	return 0
}

// fallbackSnapshot 兜底评分附带说明和置信度
func fallbackSnapshot(userID string, in ScoringInput, w ScoringWeights) models.ScoreSnapshot {
	n := len(in.Entries)
	if n > scoringWindow {
		n = scoringWindow
	}
	confidence := models.ConfidenceLow
	if n >= 3 {
		confidence = models.ConfidenceMedium
	}
	reasoning := "Estimated from your task completion so far; add journal entries for a more personal score."
	if n > 0 {
		reasoning = fmt.Sprintf("Estimated from your last %d journal entries, %d%% task completion and how recently you journaled.",
			n, clampInt(in.TaskCompletionRate, 0, 100))
	}
	return models.ScoreSnapshot{
		UserID:     userID,
		Score:      FallbackScore(in, w),
		Reasoning:  reasoning,
		Confidence: confidence,
		Source:     SourceFallback,
	}
}

// TaskTiers 任务分档阈值
type TaskTiers struct {
	LowBelow        int
	MaintenanceFrom int
}

func DefaultTaskTiers() TaskTiers {
	return TaskTiers{LowBelow: 40, MaintenanceFrom: 70}
}

// TaskTier 分档名称
type TaskTier string

const (
	TierLow         TaskTier = "low"
	TierModerate    TaskTier = "moderate"
	TierMaintenance TaskTier = "maintenance"
)

// TierFor 根据分数选择分档
func (t TaskTiers) TierFor(score int) TaskTier {
	switch {
	case score < t.LowBelow:
		return TierLow
	case score >= t.MaintenanceFrom:
		return TierMaintenance
	default:
		return TierModerate
	}
}

// TaskDraft 未落库的任务内容
type TaskDraft struct {
	Title       string
	Description string
	Category    models.TaskCategory
	Priority    models.TaskPriority
}

var taskCatalogs = map[TaskTier][models.TaskBatchSize]TaskDraft{
	TierLow: {
		{
			Title:       "5-minute guided breathing",
			Description: "Sit somewhere quiet and breathe in for 4 counts, hold for 4, out for 6. Repeat for five minutes.",
			Category:    models.CategoryMindfulness,
			Priority:    models.PriorityHigh,
		},
		{
			Title:       "Take a 10-minute walk outside",
			Description: "Step outside for a short, easy walk. Notice three things you can see and two you can hear.",
			Category:    models.CategoryActivity,
			Priority:    models.PriorityHigh,
		},
		{
			Title:       "Drink water and eat a proper meal",
			Description: "Have a full glass of water and one balanced meal today, without skipping it.",
			Category:    models.CategoryWellness,
			Priority:    models.PriorityMedium,
		},
		{
			Title:       "Reach out to someone you trust",
			Description: "Send a short message or call a friend or family member. You do not have to explain everything.",
			Category:    models.CategorySocial,
			Priority:    models.PriorityMedium,
		},
	},
	TierModerate: {
		{
			Title:       "Write down three good things",
			Description: "Before bed, note three things that went well today, however small.",
			Category:    models.CategoryMindfulness,
			Priority:    models.PriorityMedium,
		},
		{
			Title:       "20 minutes of movement",
			Description: "Pick any activity you enjoy, such as a walk, stretching or cycling, and keep it going for 20 minutes.",
			Category:    models.CategoryActivity,
			Priority:    models.PriorityMedium,
		},
		{
			Title:       "Set a screen-free wind-down",
			Description: "Put screens away 30 minutes before sleep and do something calm instead.",
			Category:    models.CategorySleep,
			Priority:    models.PriorityMedium,
		},
		{
			Title:       "Plan one enjoyable activity",
			Description: "Schedule something you look forward to this week and put it in your calendar.",
			Category:    models.CategoryWellness,
			Priority:    models.PriorityLow,
		},
	},
	TierMaintenance: {
		{
			Title:       "Keep your journaling streak",
			Description: "Write a short entry today about what is keeping you balanced.",
			Category:    models.CategoryMindfulness,
			Priority:    models.PriorityLow,
		},
		{
			Title:       "Try a new form of exercise",
			Description: "Keep your routine fresh with a different workout, class or outdoor activity.",
			Category:    models.CategoryActivity,
			Priority:    models.PriorityLow,
		},
		{
			Title:       "Share something positive",
			Description: "Tell someone about a recent win or thank them for their support.",
			Category:    models.CategorySocial,
			Priority:    models.PriorityLow,
		},
		{
			Title:       "Prepare a nourishing meal",
			Description: "Cook or choose a meal with vegetables and protein, and eat it without distractions.",
			Category:    models.CategoryNutrition,
			Priority:    models.PriorityLow,
		},
	},
}

// FallbackTasks 返回分档对应的固定任务列表副本
func FallbackTasks(score int, tiers TaskTiers) []TaskDraft {
	catalog := taskCatalogs[tiers.TierFor(score)]
	out := make([]TaskDraft, len(catalog))
	copy(out, catalog[:])
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
