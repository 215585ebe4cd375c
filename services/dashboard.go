package services

import (
	"InnerCompassGo/models"
	"math"
	"time"
)

const (
	weeklyBucketCount = 4
	// 无记录的周按中性值计算，避免趋势线被拉低
	neutralBucketScore = 50
	defaultScore       = 50
)

// ComplianceRate 已完成任务占比，无任务时为0
func ComplianceRate(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.IsCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(tasks))))
}

// Aggregate 仪表盘汇总，纯函数。snapshot 为空时分数取中性值
func Aggregate(entries []models.JournalEntry, tasks []models.Task, snapshot *models.ScoreSnapshot, now time.Time) models.DashboardResponse {
	resp := models.DashboardResponse{
		Score:            defaultScore,
		ComplianceRate:   ComplianceRate(tasks),
		WeeklyBuckets:    WeeklyBuckets(entries, now),
		MoodDistribution: MoodDistribution(entries),
	}
	if snapshot != nil {
		resp.Score = snapshot.Score
	}
	return resp
}

// WeeklyBuckets 截止 now 的4个滚动7天窗口，从旧到新。
// 窗口 i 覆盖 (now-(4-i)*7d, now-(3-i)*7d]
func WeeklyBuckets(entries []models.JournalEntry, now time.Time) []int {
	var sums [weeklyBucketCount]float64
	var counts [weeklyBucketCount]int
	for _, e := range entries {
		age := now.Sub(e.CreatedAt)
		if age < 0 || age >= weeklyBucketCount*weeklyWindow {
			continue
		}
		idx := weeklyBucketCount - 1 - int(age/weeklyWindow)
		sums[idx] += models.ClampUnit(e.Sentiment)
		counts[idx]++
	}

	buckets := make([]int, weeklyBucketCount)
	for i := range buckets {
		if counts[i] == 0 {
			buckets[i] = neutralBucketScore
			continue
		}
		buckets[i] = int(math.Round(100 * sums[i] / float64(counts[i])))
	}
	return buckets
}

// MoodDistribution 每种情绪出现次数
func MoodDistribution(entries []models.JournalEntry) map[models.Mood]int {
	dist := make(map[models.Mood]int)
	for _, e := range entries {
		dist[e.Mood]++
	}
	return dist
}
