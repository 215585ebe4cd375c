package services

import "InnerCompassGo/models"

// 未提供情感分时按情绪标签给出基线
var moodBaseline = map[models.Mood]float64{
	models.MoodHappy:   0.85,
	models.MoodCalm:    0.70,
	models.MoodNeutral: 0.50,
	models.MoodAnxious: 0.30,
	models.MoodSad:     0.20,
	models.MoodAngry:   0.15,
}

// ResolveSentiment 返回归一化到 [0,1] 的情感分
func ResolveSentiment(mood models.Mood, sentiment *float64, signed bool) float64 {
	if sentiment == nil {
		if v, ok := moodBaseline[mood]; ok {
			return v
		}
		return 0.5
	}
	if signed {
		return models.NormalizeSignedSentiment(*sentiment)
	}
	return models.ClampUnit(*sentiment)
}
