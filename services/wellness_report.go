package services

import (
	"InnerCompassGo/models"
	"math"
)

const lowSentiment = 0.4

// WellnessDimensions 五个雷达维度，entries 为时间倒序
func WellnessDimensions(entries []models.JournalEntry, tasks []models.Task) []models.WellnessDimension {
	return []models.WellnessDimension{
		{Name: "Emotional", Score: emotionalScore(entries)},
		{Name: "Social", Score: categoryCompletion(tasks, models.CategorySocial)},
		{Name: "Cognitive", Score: categoryCompletion(tasks, models.CategoryMindfulness)},
		{Name: "Stability", Score: stabilityScore(entries)},
		{Name: "Resilience", Score: resilienceScore(entries)},
	}
}

func emotionalScore(entries []models.JournalEntry) int {
	if len(entries) == 0 {
		return neutralBucketScore
	}
	return int(math.Round(100 * meanSentiment(entries)))
}

func categoryCompletion(tasks []models.Task, category models.TaskCategory) int {
	var matched []models.Task
	for _, t := range tasks {
		if t.Category == category {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return neutralBucketScore
	}
	return ComplianceRate(matched)
}

// stabilityScore 情感分波动越小越高，标准差 0.5 时为0
func stabilityScore(entries []models.JournalEntry) int {
	if len(entries) < 2 {
		return neutralBucketScore
	}
	mean := meanSentiment(entries)
	var variance float64
	for _, e := range entries {
		d := models.ClampUnit(e.Sentiment) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(entries)))
	return clampInt(int(math.Round(100*(1-2*stddev))), 0, 100)
}

// resilienceScore 低落记录之后出现回升的比例
func resilienceScore(entries []models.JournalEntry) int {
	lows, recovered := 0, 0
	// entries 倒序，i-1 是 i 之后的一条
	for i := len(entries) - 1; i >= 0; i-- {
		s := models.ClampUnit(entries[i].Sentiment)
		if s >= lowSentiment {
			continue
		}
		lows++
		if i > 0 && models.ClampUnit(entries[i-1].Sentiment) > s {
			recovered++
		}
	}
	if lows == 0 {
		return neutralBucketScore
	}
	return int(math.Round(100 * float64(recovered) / float64(lows)))
}

func meanSentiment(entries []models.JournalEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += models.ClampUnit(e.Sentiment)
	}
	return sum / float64(len(entries))
}
