package models

import (
	"fmt"
	"strings"
	"time"
)

// CreateJournalRequest 新建日记请求
type CreateJournalRequest struct {
	Body string `json:"body" binding:"required"`
	Mood string `json:"mood" binding:"required"`
	// Sentiment 可选，SentimentSigned 为 true 时取值 -1..1，否则 0..1
	Sentiment       *float64   `json:"sentiment"`
	SentimentSigned bool       `json:"sentimentSigned"`
	RecordedAt      *time.Time `json:"recordedAt"`
}

// Validate 校验情绪标签和情感分，并统一转换为 UTC
func (r *CreateJournalRequest) Validate() error {
	if strings.TrimSpace(r.Body) == "" {
		return fmt.Errorf("body must not be empty")
	}
	if _, ok := ParseMood(r.Mood); !ok {
		return fmt.Errorf("invalid mood %q, must be one of: happy, sad, anxious, calm, angry, neutral", r.Mood)
	}
	if r.Sentiment != nil {
		lo := 0.0
		if r.SentimentSigned {
			lo = -1
		}
		if *r.Sentiment < lo || *r.Sentiment > 1 {
			return fmt.Errorf("sentiment out of range")
		}
	}
	if r.RecordedAt != nil {
		utc := r.RecordedAt.UTC()
		r.RecordedAt = &utc
	}
	return nil
}

// ChatRequest 陪伴聊天请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}
