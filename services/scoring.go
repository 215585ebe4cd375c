package services

import (
	"InnerCompassGo/config"
	"InnerCompassGo/models"
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	SourceGenerative = "generative"
	SourceFallback   = "fallback"

	maxReasoningLen = 500
)

// ScoringEngine 计算心理健康分：优先调用生成能力，失败时使用兜底公式
type ScoringEngine struct {
	invoker Invoker
	weights ScoringWeights
	entries ActivityReader
	tasks   TaskStore
	scores  ScoreStore
	now     func() time.Time
}

func NewScoringEngine(invoker Invoker, weights ScoringWeights, entries ActivityReader, tasks TaskStore, scores ScoreStore) *ScoringEngine {
	return &ScoringEngine{
		invoker: invoker,
		weights: weights,
		entries: entries,
		tasks:   tasks,
		scores:  scores,
		now:     time.Now,
	}
}

// Compute 不返回错误，任何生成失败都转为兜底结果
func (e *ScoringEngine) Compute(ctx context.Context, userID string, in ScoringInput) models.ScoreSnapshot {
	snapshot, err := e.generate(ctx, userID, in)
	if err != nil {
		config.Logger.Warnw("评分生成失败，使用兜底公式",
			"userID", userID,
			"error", err,
		)
		snapshot = fallbackSnapshot(userID, in, e.weights)
	} else {
		config.Logger.Infow("评分生成成功", "userID", userID, "score", snapshot.Score)
	}
	snapshot.ComputedAt = e.now().UTC()
	return snapshot
}

func (e *ScoringEngine) generate(ctx context.Context, userID string, in ScoringInput) (models.ScoreSnapshot, error) {
	if e.invoker == nil {
		return models.ScoreSnapshot{}, ErrGenerationUnavailable
	}
	result, err := e.invoker.Invoke(ctx, buildScoringPrompt(in), ShapeJSONScore)
	if err != nil {
		return models.ScoreSnapshot{}, err
	}
	return validateScorePayload(userID, result.Score)
}

func validateScorePayload(userID string, p *ScorePayload) (models.ScoreSnapshot, error) {
	if p == nil || p.Score == nil {
		return models.ScoreSnapshot{}, fmt.Errorf("%w: missing score", ErrMalformedResult)
	}
	score := *p.Score
	if math.IsNaN(score) || score < 0 || score > 100 {
		return models.ScoreSnapshot{}, fmt.Errorf("%w: score %v out of range", ErrMalformedResult, score)
	}
	confidence, ok := models.ParseConfidence(strings.ToLower(strings.TrimSpace(p.Confidence)))
	if !ok {
		confidence = models.ConfidenceMedium
	}
	return models.ScoreSnapshot{
		UserID:     userID,
		Score:      clampInt(int(math.Round(score)), 0, 100),
		Reasoning:  truncateRunes(strings.TrimSpace(p.Reasoning), maxReasoningLen),
		Confidence: confidence,
		Source:     SourceGenerative,
	}, nil
}

// Recompute 读取最近记录和任务完成率，计算并覆盖保存当前评分
func (e *ScoringEngine) Recompute(ctx context.Context, userID string, loc *time.Location) (models.ScoreSnapshot, error) {
	entries, err := e.entries.RecentEntries(ctx, userID, scoringWindow)
	if err != nil {
		return models.ScoreSnapshot{}, fmt.Errorf("load recent entries: %w", err)
	}
	tasks, err := e.tasks.ListTasks(ctx, userID)
	if err != nil {
		return models.ScoreSnapshot{}, fmt.Errorf("load tasks: %w", err)
	}

	in := BuildScoringInput(entries, ComplianceRate(tasks), e.now(), loc)
	snapshot := e.Compute(ctx, userID, in)
	if err := e.scores.ReplaceScore(ctx, snapshot); err != nil {
		return models.ScoreSnapshot{}, fmt.Errorf("save score: %w", err)
	}
	return snapshot, nil
}

// BuildScoringInput entries 为时间倒序。
// 天数按最新一条记录计算，提交日记后重新评分时就是刚写入的记录，恒为0
func BuildScoringInput(entries []models.JournalEntry, completionRate int, now time.Time, loc *time.Location) ScoringInput {
	if len(entries) > scoringWindow {
		entries = entries[:scoringWindow]
	}
	in := ScoringInput{
		Entries:            entries,
		TaskCompletionRate: completionRate,
		DaysSinceLastEntry: NoRecentEntry,
	}
	for _, e := range entries {
		in.RecentMoods = append(in.RecentMoods, e.Mood)
	}
	if len(entries) > 0 {
		days := dayNumber(now, loc) - dayNumber(entries[0].CreatedAt, loc)
		if days < 0 {
			days = 0
		}
		in.DaysSinceLastEntry = days
	}
	return in
}

func buildScoringPrompt(in ScoringInput) string {
	var sb strings.Builder
	sb.WriteString(`You are a supportive wellness assistant. Estimate the user's current mental wellness score from 0 to 100 based on their recent activity. This is an engagement and mood heuristic, not a diagnosis.

Recent journal entries (newest first):
`)
	if len(in.Entries) == 0 {
		sb.WriteString("- none\n")
	}
	for _, e := range in.Entries {
		sb.WriteString(fmt.Sprintf("- %s | mood: %s | sentiment: %.2f | %s\n",
			e.CreatedAt.Format("2006-01-02"), e.Mood, e.Sentiment, truncateRunes(e.Body, 200)))
	}
	sb.WriteString(fmt.Sprintf("\nTask completion rate: %d%%\n", clampInt(in.TaskCompletionRate, 0, 100)))
	if in.DaysSinceLastEntry == NoRecentEntry {
		sb.WriteString("Days since last journal entry: never journaled\n")
	} else {
		sb.WriteString(fmt.Sprintf("Days since last journal entry: %d\n", in.DaysSinceLastEntry))
	}
	moods := make([]string, 0, len(in.RecentMoods))
	for _, m := range in.RecentMoods {
		moods = append(moods, string(m))
	}
	sb.WriteString(fmt.Sprintf("Recent moods: %s\n", strings.Join(moods, ", ")))
	sb.WriteString(`
Respond with JSON only, no markdown:
{"score": <integer 0-100>, "reasoning": "<one or two sentences>", "confidence": "high" | "medium" | "low"}`)
	return sb.String()
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
