package repositories

import (
	"InnerCompassGo/config"
	"InnerCompassGo/models"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB 每个测试独立的内存库
func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", tb.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(tb, err)
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, config.MigrateDB(db))
	return db
}

var base = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func seedEntry(tb testing.TB, repo *JournalRepository, id, userID string, at time.Time) {
	tb.Helper()
	require.NoError(tb, repo.CreateEntry(context.Background(), &models.JournalEntry{
		ID:        id,
		UserID:    userID,
		Body:      "body " + id,
		Mood:      models.MoodCalm,
		Sentiment: 0.7,
		CreatedAt: at,
	}))
}

func TestJournalRepository(t *testing.T) {
	repo := NewJournalRepository(openTestDB(t))
	ctx := context.Background()

	seedEntry(t, repo, "e1", "u1", base.Add(-48*time.Hour))
	seedEntry(t, repo, "e2", "u1", base.Add(-time.Hour))
	seedEntry(t, repo, "e3", "u1", base.Add(-24*time.Hour))
	seedEntry(t, repo, "x1", "u2", base)

	recent, err := repo.RecentEntries(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].ID)
	assert.Equal(t, "e3", recent[1].ID)
	assert.Equal(t, models.MoodCalm, recent[0].Mood)

	since, err := repo.EntriesSince(ctx, "u1", base.Add(-30*time.Hour))
	require.NoError(t, err)
	assert.Len(t, since, 2)

	timestamps, err := repo.EntryTimestamps(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, timestamps, 3)
	assert.True(t, timestamps[0].Equal(base.Add(-time.Hour)))
}

func newTask(id, userID string, category models.TaskCategory) models.Task {
	return models.Task{
		ID:          id,
		UserID:      userID,
		Title:       "task " + id,
		Description: "do " + id,
		Category:    category,
		Priority:    models.PriorityMedium,
		Source:      "fallback",
		AssignedAt:  base,
	}
}

func TestTaskRepositoryReplaceBatch(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	ctx := context.Background()

	first := []models.Task{newTask("a1", "u1", models.CategorySleep), newTask("a2", "u1", models.CategorySocial)}
	for i := range first {
		first[i].BatchID = "batch-a"
	}
	require.NoError(t, repo.ReplaceBatch(ctx, "u1", first))

	second := []models.Task{newTask("b1", "u1", models.CategoryActivity)}
	second[0].BatchID = "batch-b"
	require.NoError(t, repo.ReplaceBatch(ctx, "u1", second))
	require.NoError(t, repo.ReplaceBatch(ctx, "u2", []models.Task{newTask("c1", "u2", models.CategoryWellness)}))

	current, err := repo.CurrentBatch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "b1", current[0].ID)

	all, err := repo.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTaskRepositoryToggle(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.ReplaceBatch(ctx, "u1", []models.Task{newTask("t1", "u1", models.CategorySleep)}))

	task, err := repo.ToggleTask(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.True(t, task.IsCompleted)

	task, err = repo.ToggleTask(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, task.IsCompleted)

	_, err = repo.ToggleTask(ctx, "u2", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.ToggleTask(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreRepository(t *testing.T) {
	repo := NewScoreRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.GetScore(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.ReplaceScore(ctx, models.ScoreSnapshot{
		UserID: "u1", Score: 40, Reasoning: "first", Confidence: models.ConfidenceLow, Source: "fallback", ComputedAt: base,
	}))
	require.NoError(t, repo.ReplaceScore(ctx, models.ScoreSnapshot{
		UserID: "u1", Score: 73, Reasoning: "second", Confidence: models.ConfidenceHigh, Source: "generative", ComputedAt: base.Add(time.Hour),
	}))

	snap, err := repo.GetScore(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 73, snap.Score)
	assert.Equal(t, "second", snap.Reasoning)
	assert.Equal(t, models.ConfidenceHigh, snap.Confidence)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "u1", Username: "ana", Timezone: "UTC"}))

	user, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.GetDisplayName())

	_, err = repo.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
