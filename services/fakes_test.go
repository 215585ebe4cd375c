package services

import (
	"InnerCompassGo/models"
	"InnerCompassGo/repositories"
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type scriptedReply struct {
	text string
	err  error
}

// fakeGenerator 按模型返回预设结果，最后一条会重复使用
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string][]scriptedReply
	calls   []string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{replies: make(map[string][]scriptedReply)}
}

func (g *fakeGenerator) on(variant string, replies ...scriptedReply) *fakeGenerator {
	g.replies[variant] = append(g.replies[variant], replies...)
	return g
}

func (g *fakeGenerator) Generate(_ context.Context, variant, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, variant)
	queue := g.replies[variant]
	if len(queue) == 0 {
		return "", errors.New("no reply scripted for " + variant)
	}
	r := queue[0]
	if len(queue) > 1 {
		g.replies[variant] = queue[1:]
	}
	return r.text, r.err
}

func (g *fakeGenerator) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// fakeInvoker 直接返回预设的解析结果
type fakeInvoker struct {
	result *GenerationResult
	err    error
	calls  int
}

func (f *fakeInvoker) Invoke(_ context.Context, _ string, shape ResponseShape) (*GenerationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Shape = shape
	return &res, nil
}

// memoryStore 内存实现的全部存储接口
type memoryStore struct {
	mu      sync.Mutex
	entries []models.JournalEntry
	tasks   []models.Task
	scores  map[string]models.ScoreSnapshot
	users   map[string]models.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		scores: make(map[string]models.ScoreSnapshot),
		users:  make(map[string]models.User),
	}
}

func (s *memoryStore) sortedEntries(userID string, keep func(models.JournalEntry) bool) []models.JournalEntry {
	var out []models.JournalEntry
	for _, e := range s.entries {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) CreateEntry(_ context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryStore) RecentEntries(_ context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedEntries(userID, func(models.JournalEntry) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) EntriesSince(_ context.Context, userID string, since time.Time) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedEntries(userID, func(e models.JournalEntry) bool { return e.CreatedAt.After(since) }), nil
}

func (s *memoryStore) EntryTimestamps(_ context.Context, userID string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Time
	for _, e := range s.sortedEntries(userID, func(models.JournalEntry) bool { return true }) {
		out = append(out, e.CreatedAt)
	}
	return out, nil
}

func (s *memoryStore) ListTasks(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memoryStore) CurrentBatch(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.UserID == userID && !t.Superseded {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memoryStore) ReplaceBatch(_ context.Context, userID string, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].UserID == userID {
			s.tasks[i].Superseded = true
		}
	}
	s.tasks = append(s.tasks, tasks...)
	return nil
}

func (s *memoryStore) ToggleTask(_ context.Context, userID, taskID string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID && s.tasks[i].UserID == userID {
			s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
			return s.tasks[i], nil
		}
	}
	return models.Task{}, repositories.ErrNotFound
}

func (s *memoryStore) GetScore(_ context.Context, userID string) (models.ScoreSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.scores[userID]
	if !ok {
		return models.ScoreSnapshot{}, repositories.ErrNotFound
	}
	return snap, nil
}

func (s *memoryStore) ReplaceScore(_ context.Context, snapshot models.ScoreSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[snapshot.UserID] = snapshot
	return nil
}

func (s *memoryStore) GetUser(_ context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func entry(userID string, at time.Time, mood models.Mood, sentiment float64) models.JournalEntry {
	return models.JournalEntry{
		ID:        at.Format(time.RFC3339Nano) + string(mood),
		UserID:    userID,
		Body:      "entry",
		Mood:      mood,
		Sentiment: sentiment,
		CreatedAt: at,
	}
}

func floatPtr(v float64) *float64 { return &v }
