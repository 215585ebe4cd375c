package services

import (
	"InnerCompassGo/models"
	"context"
	"time"
)

// ActivityReader 读取最近的日记，按时间倒序
type ActivityReader interface {
	RecentEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error)
}

// JournalStore 日记持久化
type JournalStore interface {
	ActivityReader
	CreateEntry(ctx context.Context, entry *models.JournalEntry) error
	EntriesSince(ctx context.Context, userID string, since time.Time) ([]models.JournalEntry, error)
	EntryTimestamps(ctx context.Context, userID string) ([]time.Time, error)
}

// TaskStore 任务持久化，ReplaceBatch 会将旧批次标记为 superseded
type TaskStore interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CurrentBatch(ctx context.Context, userID string) ([]models.Task, error)
	ReplaceBatch(ctx context.Context, userID string, tasks []models.Task) error
	ToggleTask(ctx context.Context, userID, taskID string) (models.Task, error)
}

// ScoreStore 每个用户一条当前评分，不存在时返回 repositories.ErrNotFound
type ScoreStore interface {
	GetScore(ctx context.Context, userID string) (models.ScoreSnapshot, error)
	ReplaceScore(ctx context.Context, snapshot models.ScoreSnapshot) error
}

// UserReader 用于获取用户时区
type UserReader interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}
