package models

import (
	"strings"
	"time"
)

// Mood 情绪标签
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodCalm    Mood = "calm"
	MoodAngry   Mood = "angry"
	MoodNeutral Mood = "neutral"
)

// 情绪趋势中视为积极的标签，excited/content 来自旧客户端
var positiveMoods = map[Mood]bool{
	MoodHappy: true,
	MoodCalm:  true,
	"excited": true,
	"content": true,
}

// ParseMood 解析情绪标签，大小写不敏感
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MoodHappy, MoodSad, MoodAnxious, MoodCalm, MoodAngry, MoodNeutral:
		return m, true
	}
	return "", false
}

// IsPositive 是否计入情绪趋势
func (m Mood) IsPositive() bool {
	return positiveMoods[Mood(strings.ToLower(string(m)))]
}

// JournalEntry 日记记录，创建后不可修改
type JournalEntry struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(50);index:idx_journal_user_created" json:"user_id"`
	Body      string    `gorm:"type:text" json:"body"`
	Mood      Mood      `gorm:"type:varchar(20)" json:"mood"`
	Sentiment float64   `json:"sentiment"` // 0-1，越高越积极
	CreatedAt time.Time `gorm:"index:idx_journal_user_created" json:"createdAt"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// NormalizeSignedSentiment 将 -1..1 的情感分映射到 0..1
func NormalizeSignedSentiment(s float64) float64 {
	return ClampUnit((s + 1) / 2)
}

// ClampUnit 限制在 [0,1]
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
