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

	"golang.org/x/sync/errgroup"
)

const (
	dashboardLookback = weeklyBucketCount * weeklyWindow
	defaultListLimit  = 50
)

// GoalTargets 每周/每月记录目标
type GoalTargets struct {
	Weekly  int
	Monthly int
}

// WellnessService 串联日记、评分、任务和统计
type WellnessService struct {
	journals   JournalStore
	tasks      TaskStore
	scores     ScoreStore
	users      UserReader
	scoring    *ScoringEngine
	taskEngine *TaskEngine
	locker     UserLocker
	goals      GoalTargets
	now        func() time.Time
}

// WellnessDeps 构造 WellnessService 所需依赖
type WellnessDeps struct {
	Journals JournalStore
	Tasks    TaskStore
	Scores   ScoreStore
	Users    UserReader
	Invoker  Invoker
	Locker   UserLocker
	Weights  ScoringWeights
	Tiers    TaskTiers
	Goals    GoalTargets
}

func NewWellnessService(deps WellnessDeps) *WellnessService {
	locker := deps.Locker
	if locker == nil {
		locker = NewLocalUserLocker()
	}
	return &WellnessService{
		journals:   deps.Journals,
		tasks:      deps.Tasks,
		scores:     deps.Scores,
		users:      deps.Users,
		scoring:    NewScoringEngine(deps.Invoker, deps.Weights, deps.Journals, deps.Tasks, deps.Scores),
		taskEngine: NewTaskEngine(deps.Invoker, deps.Tiers, deps.Journals, deps.Tasks, deps.Scores),
		locker:     locker,
		goals:      deps.Goals,
		now:        time.Now,
	}
}

// location 用户时区，查询失败时退回 UTC
func (s *WellnessService) location(ctx context.Context, userID string) *time.Location {
	if s.users == nil {
		return time.UTC
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		config.Logger.Debugw("获取用户时区失败", "userID", userID, "error", err)
		return time.UTC
	}
	return user.Location()
}

// withUserLock 获取锁失败时降级为无锁执行，评分只是当前状态，后写覆盖可以接受
func (s *WellnessService) withUserLock(ctx context.Context, userID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		config.Logger.Warnw("获取用户锁失败，继续执行", "userID", userID, "error", err)
		return fn()
	}
	defer unlock()
	return fn()
}

// SubmitJournalEntry 保存日记，然后重新评分并刷新当天任务
func (s *WellnessService) SubmitJournalEntry(ctx context.Context, userID string, req models.CreateJournalRequest) (*models.JournalSubmissionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	mood, _ := models.ParseMood(req.Mood)

	createdAt := s.now().UTC()
	if req.RecordedAt != nil {
		createdAt = *req.RecordedAt
	}
	entry := models.JournalEntry{
		ID:        utils.GenerateID(),
		UserID:    userID,
		Body:      strings.TrimSpace(req.Body),
		Mood:      mood,
		Sentiment: ResolveSentiment(mood, req.Sentiment, req.SentimentSigned),
		CreatedAt: createdAt,
	}
	if err := s.journals.CreateEntry(ctx, &entry); err != nil {
		return nil, fmt.Errorf("save journal entry: %w", err)
	}

	resp := &models.JournalSubmissionResponse{Entry: entry}
	loc := s.location(ctx, userID)
	err := s.withUserLock(ctx, userID, func() error {
		snapshot, err := s.scoring.Recompute(ctx, userID, loc)
		if err != nil {
			return err
		}
		resp.Score = snapshot

		tasks, err := s.taskEngine.Refresh(ctx, userID, loc, false)
		if err != nil {
			return err
		}
		resp.Tasks = tasks
		return nil
	})
	if err != nil {
		// 日记已经落库，返回降级结果
		config.Logger.Errorw("日记已保存，评分或任务刷新失败", "userID", userID, "entryID", entry.ID, "error", err)
		resp.Degraded = true
	}
	return resp, nil
}

// ListJournal since 为零值时返回最近 limit 条
func (s *WellnessService) ListJournal(ctx context.Context, userID string, since time.Time, limit int) ([]models.JournalEntry, error) {
	if !since.IsZero() {
		return s.journals.EntriesSince(ctx, userID, since)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.journals.RecentEntries(ctx, userID, limit)
}

// CurrentScore 尚无评分时立即计算一次
func (s *WellnessService) CurrentScore(ctx context.Context, userID string) (models.ScoreSnapshot, error) {
	snapshot, err := s.scores.GetScore(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.Rescore(ctx, userID)
	}
	return snapshot, err
}

// Rescore 重新计算并保存评分
func (s *WellnessService) Rescore(ctx context.Context, userID string) (models.ScoreSnapshot, error) {
	var snapshot models.ScoreSnapshot
	loc := s.location(ctx, userID)
	err := s.withUserLock(ctx, userID, func() error {
		var err error
		snapshot, err = s.scoring.Recompute(ctx, userID, loc)
		return err
	})
	return snapshot, err
}

// CurrentTasks 当天没有任务时生成一批
func (s *WellnessService) CurrentTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.refreshTasks(ctx, userID, false)
}

// RegenerateTasks 丢弃当前批次，无视当天是否已生成
func (s *WellnessService) RegenerateTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.refreshTasks(ctx, userID, true)
}

// refreshTasks 当天批次的检查和写入都在用户锁内完成
func (s *WellnessService) refreshTasks(ctx context.Context, userID string, force bool) ([]models.Task, error) {
	var tasks []models.Task
	loc := s.location(ctx, userID)
	err := s.withUserLock(ctx, userID, func() error {
		var err error
		tasks, err = s.taskEngine.Refresh(ctx, userID, loc, force)
		return err
	})
	return tasks, err
}

// ToggleTask 切换完成状态
func (s *WellnessService) ToggleTask(ctx context.Context, userID, taskID string) (models.Task, error) {
	return s.tasks.ToggleTask(ctx, userID, taskID)
}

// loadHistory 并行读取最近28天日记、全部任务和当前评分
func (s *WellnessService) loadHistory(ctx context.Context, userID string, now time.Time) ([]models.JournalEntry, []models.Task, *models.ScoreSnapshot, error) {
	var (
		entries  []models.JournalEntry
		tasks    []models.Task
		snapshot *models.ScoreSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.journals.EntriesSince(gctx, userID, now.Add(-dashboardLookback))
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.ListTasks(gctx, userID)
		return err
	})
	g.Go(func() error {
		snap, err := s.scores.GetScore(gctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		snapshot = &snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return entries, tasks, snapshot, nil
}

// Dashboard 仪表盘
func (s *WellnessService) Dashboard(ctx context.Context, userID string) (models.DashboardResponse, error) {
	now := s.now()
	entries, tasks, snapshot, err := s.loadHistory(ctx, userID, now)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	return Aggregate(entries, tasks, snapshot, now), nil
}

// Streaks 连续记录天数和目标进度
func (s *WellnessService) Streaks(ctx context.Context, userID string) (models.StreakResponse, error) {
	timestamps, err := s.journals.EntryTimestamps(ctx, userID)
	if err != nil {
		return models.StreakResponse{}, err
	}
	now := s.now()
	return models.StreakResponse{
		StreakState: ComputeStreak(timestamps, now, s.location(ctx, userID)),
		Goals:       ComputeGoalProgress(timestamps, now, s.goals.Weekly, s.goals.Monthly),
	}, nil
}

// WellnessReport 雷达图，基于最近28天
func (s *WellnessService) WellnessReport(ctx context.Context, userID string) (models.WellnessReportResponse, error) {
	entries, tasks, snapshot, err := s.loadHistory(ctx, userID, s.now())
	if err != nil {
		return models.WellnessReportResponse{}, err
	}
	resp := models.WellnessReportResponse{
		Score:      defaultScore,
		Dimensions: WellnessDimensions(entries, tasks),
	}
	if snapshot != nil {
		resp.Score = snapshot.Score
	}
	return resp, nil
}
