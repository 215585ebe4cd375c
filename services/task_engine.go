package services

import (
	"InnerCompassGo/config"
	"InnerCompassGo/models"
	"InnerCompassGo/repositories"
	"InnerCompassGo/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	taskContextEntries = 3
	taskLifetime       = 24 * time.Hour
)

// TaskInput 任务生成输入
type TaskInput struct {
	Score          int
	LatestMood     models.Mood
	Recent         []models.JournalEntry
	ComplianceRate int
}

// TaskEngine 生成每日4个推荐任务，生成失败时按分档使用固定任务
type TaskEngine struct {
	invoker Invoker
	tiers   TaskTiers
	entries ActivityReader
	tasks   TaskStore
	scores  ScoreStore
	now     func() time.Time
}

func NewTaskEngine(invoker Invoker, tiers TaskTiers, entries ActivityReader, tasks TaskStore, scores ScoreStore) *TaskEngine {
	return &TaskEngine{
		invoker: invoker,
		tiers:   tiers,
		entries: entries,
		tasks:   tasks,
		scores:  scores,
		now:     time.Now,
	}
}

// Generate 始终返回4个任务草稿及来源
func (e *TaskEngine) Generate(ctx context.Context, userID string, in TaskInput) ([]TaskDraft, string) {
	drafts, err := e.generate(ctx, in)
	if err != nil {
		config.Logger.Warnw("任务生成失败，使用固定任务",
			"userID", userID,
			"score", in.Score,
			"tier", e.tiers.TierFor(in.Score),
			"error", err,
		)
		return FallbackTasks(in.Score, e.tiers), SourceFallback
	}
	return drafts, SourceGenerative
}

func (e *TaskEngine) generate(ctx context.Context, in TaskInput) ([]TaskDraft, error) {
	if e.invoker == nil {
		return nil, ErrGenerationUnavailable
	}
	result, err := e.invoker.Invoke(ctx, buildTaskPrompt(in), ShapeJSONTaskList)
	if err != nil {
		return nil, err
	}
	return validateTaskPayloads(result.Tasks)
}

func validateTaskPayloads(payloads []TaskPayload) ([]TaskDraft, error) {
	if len(payloads) != models.TaskBatchSize {
		return nil, fmt.Errorf("%w: expected %d tasks, got %d", ErrMalformedResult, models.TaskBatchSize, len(payloads))
	}
	drafts := make([]TaskDraft, 0, len(payloads))
	for i, p := range payloads {
		title := strings.TrimSpace(p.Title)
		desc := strings.TrimSpace(p.Description)
		if title == "" || desc == "" {
			return nil, fmt.Errorf("%w: task %d has empty title or description", ErrMalformedResult, i)
		}
		category, ok := models.ParseTaskCategory(p.Category)
		if !ok {
			return nil, fmt.Errorf("%w: task %d has invalid category %q", ErrMalformedResult, i, p.Category)
		}
		priority, ok := models.ParseTaskPriority(p.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: task %d has invalid priority %q", ErrMalformedResult, i, p.Priority)
		}
		drafts = append(drafts, TaskDraft{
			Title:       truncateRunes(title, models.TaskTitleMaxLen),
			Description: truncateRunes(desc, models.TaskDescriptionMaxLen),
			Category:    category,
			Priority:    priority,
		})
	}
	return drafts, nil
}

// Refresh 生成并保存新批次。force 为 false 时，当天已生成过则直接返回当前批次
func (e *TaskEngine) Refresh(ctx context.Context, userID string, loc *time.Location, force bool) ([]models.Task, error) {
	now := e.now()
	if !force {
		current, err := e.tasks.CurrentBatch(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load current tasks: %w", err)
		}
		if len(current) > 0 && dayNumber(current[0].AssignedAt, loc) == dayNumber(now, loc) {
			return current, nil
		}
	}

	in, err := e.loadInput(ctx, userID)
	if err != nil {
		return nil, err
	}
	drafts, source := e.Generate(ctx, userID, in)
	tasks := materializeTasks(userID, drafts, source, now)
	if err := e.tasks.ReplaceBatch(ctx, userID, tasks); err != nil {
		return nil, fmt.Errorf("save tasks: %w", err)
	}
	config.Logger.Infow("任务已生成",
		"userID", userID,
		"source", source,
		"force", force,
	)
	return tasks, nil
}

func (e *TaskEngine) loadInput(ctx context.Context, userID string) (TaskInput, error) {
	var in TaskInput

	snapshot, err := e.scores.GetScore(ctx, userID)
	switch {
	case err == nil:
		in.Score = snapshot.Score
	case errors.Is(err, repositories.ErrNotFound):
		in.Score = defaultScore
	default:
		return in, fmt.Errorf("load score: %w", err)
	}

	recent, err := e.entries.RecentEntries(ctx, userID, taskContextEntries)
	if err != nil {
		return in, fmt.Errorf("load recent entries: %w", err)
	}
	in.Recent = recent
	if len(recent) > 0 {
		in.LatestMood = recent[0].Mood
	}

	tasks, err := e.tasks.ListTasks(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("load tasks: %w", err)
	}
	in.ComplianceRate = ComplianceRate(tasks)
	return in, nil
}

func materializeTasks(userID string, drafts []TaskDraft, source string, now time.Time) []models.Task {
	batchID := utils.GenerateBatchID()
	assigned := now.UTC()
	expires := assigned.Add(taskLifetime)
	tasks := make([]models.Task, 0, len(drafts))
	for _, d := range drafts {
		exp := expires
		tasks = append(tasks, models.Task{
			ID:          utils.GenerateID(),
			UserID:      userID,
			BatchID:     batchID,
			Title:       d.Title,
			Description: d.Description,
			Category:    d.Category,
			Priority:    d.Priority,
			Source:      source,
			AssignedAt:  assigned,
			ExpiresAt:   &exp,
		})
	}
	return tasks
}

func buildTaskPrompt(in TaskInput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`You are a supportive wellness coach. Suggest exactly 4 small, concrete tasks for today.

Current wellness score: %d/100
Task completion rate: %d%%
`, in.Score, clampInt(in.ComplianceRate, 0, 100)))
	if in.LatestMood != "" {
		sb.WriteString(fmt.Sprintf("Latest mood: %s\n", in.LatestMood))
	}
	if len(in.Recent) > 0 {
		sb.WriteString("Recent journal entries:\n")
		for _, e := range in.Recent {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", e.Mood, truncateRunes(e.Body, 200)))
		}
	}
	sb.WriteString(`
Rules:
- title at most 60 characters, description at most 150 characters
- category is one of: Wellness, Mindfulness, Activity, Social, Sleep, Nutrition
- priority is one of: high, medium, low
- lower scores need gentler, higher-priority tasks; high scores focus on sustaining habits

Respond with a JSON array only, no markdown:
[{"title": "...", "description": "...", "category": "...", "priority": "..."}]`)
	return sb.String()
}
