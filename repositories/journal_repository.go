package repositories

import (
	"InnerCompassGo/models"
	"context"
	"time"

	"gorm.io/gorm"
)

// JournalRepository 日记读写
type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentEntries 最近 limit 条，时间倒序
func (r *JournalRepository) RecentEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// EntriesSince since 之后的记录，时间倒序
func (r *JournalRepository) EntriesSince(ctx context.Context, userID string, since time.Time) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at > ?", userID, since.UTC()).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

// EntryTimestamps 全部记录时间，时间倒序
func (r *JournalRepository) EntryTimestamps(ctx context.Context, userID string) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Pluck("created_at", &timestamps).Error
	return timestamps, err
}
