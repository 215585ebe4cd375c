package services

import (
	"InnerCompassGo/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ResponseShape 期望的返回结构
type ResponseShape string

const (
	ShapeFreeText     ResponseShape = "freeText"
	ShapeJSONScore    ResponseShape = "jsonScore"
	ShapeJSONTaskList ResponseShape = "jsonTaskList"
)

// TextGenerator 外部文本生成能力，variant 为模型名
type TextGenerator interface {
	Generate(ctx context.Context, variant, prompt string) (string, error)
}

// Invoker 由 GenerationAdapter 实现，引擎只依赖该接口
type Invoker interface {
	Invoke(ctx context.Context, prompt string, shape ResponseShape) (*GenerationResult, error)
}

// ScorePayload jsonScore 结构
type ScorePayload struct {
	Score      *float64 `json:"score"`
	Reasoning  string   `json:"reasoning"`
	Confidence string   `json:"confidence"`
}

// TaskPayload jsonTaskList 中的单个任务
type TaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// GenerationResult 解析后的结果，按 Shape 填充对应字段
type GenerationResult struct {
	Shape   ResponseShape
	Variant string
	Text    string
	Score   *ScorePayload
	Tasks   []TaskPayload
}

// 限流重试的等待时间，依次为第1、2次重试
var defaultRateLimitBackoff = []time.Duration{3 * time.Second, 6 * time.Second}

// variantState 当前优先使用的模型下标，进程内粘滞
type variantState struct {
	mu    sync.Mutex
	index int
}

func (s *variantState) get() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// promote 只向后移动，并发调用时取较大值
func (s *variantState) promote(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index > s.index {
		s.index = index
	}
}

// GenerationAdapter 在外部生成能力之上实现限流重试和模型切换
type GenerationAdapter struct {
	generator TextGenerator
	variants  []string
	backoff   []time.Duration
	state     *variantState
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewGenerationAdapter variants 按优先级排列，至少两个
func NewGenerationAdapter(generator TextGenerator, variants []string) (*GenerationAdapter, error) {
	if generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	if len(variants) < 2 {
		return nil, fmt.Errorf("at least 2 generation variants are required, got %d", len(variants))
	}
	return &GenerationAdapter{
		generator: generator,
		variants:  append([]string(nil), variants...),
		backoff:   defaultRateLimitBackoff,
		state:     &variantState{},
		sleep:     sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CurrentVariant 当前优先模型
func (a *GenerationAdapter) CurrentVariant() string {
	return a.variants[a.state.get()]
}

// Invoke 调用生成能力并按 shape 解析结果。
// 限流时在同一模型上最多重试两次（3s、6s），模型不可用且为该模型首次尝试时切换到下一个模型。
// 其余失败、解析失败或重试耗尽均返回 GenerationError。
func (a *GenerationAdapter) Invoke(ctx context.Context, prompt string, shape ResponseShape) (*GenerationResult, error) {
	idx := a.state.get()
	variant := a.variants[idx]
	rateRetries := 0
	firstAttempt := true

	for attempt := 1; ; attempt++ {
		text, err := a.generator.Generate(ctx, variant, prompt)
		if err == nil {
			result, perr := parseGeneration(shape, text)
			if perr != nil {
				config.Logger.Warnw("生成结果解析失败",
					"variant", variant,
					"shape", shape,
					"error", perr,
				)
				return nil, &GenerationError{Variant: variant, Attempt: attempt, Err: perr}
			}
			result.Variant = variant
			return result, nil
		}

		switch {
		case errors.Is(err, ErrRateLimited) && rateRetries < len(a.backoff):
			delay := a.backoff[rateRetries]
			rateRetries++
			firstAttempt = false
			config.Logger.Infow("生成限流，等待重试",
				"variant", variant,
				"attempt", attempt,
				"delay", delay.String(),
			)
			if serr := a.sleep(ctx, delay); serr != nil {
				return nil, &GenerationError{Variant: variant, Attempt: attempt, Err: serr}
			}
			continue

		case errors.Is(err, ErrCapabilityUnavailable) && firstAttempt && idx+1 < len(a.variants):
			config.Logger.Warnw("模型不可用，切换模型",
				"from", variant,
				"to", a.variants[idx+1],
				"error", err,
			)
			idx++
			variant = a.variants[idx]
			a.state.promote(idx)
			continue
		}

		return nil, &GenerationError{Variant: variant, Attempt: attempt, Err: err}
	}
}

func parseGeneration(shape ResponseShape, text string) (*GenerationResult, error) {
	result := &GenerationResult{Shape: shape}
	switch shape {
	case ShapeFreeText:
		result.Text = strings.TrimSpace(text)
		if result.Text == "" {
			return nil, fmt.Errorf("%w: empty text", ErrMalformedResult)
		}
	case ShapeJSONScore:
		cleaned := stripCodeFence(text)
		var payload ScorePayload
		if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
		}
		result.Text = cleaned
		result.Score = &payload
	case ShapeJSONTaskList:
		cleaned := stripCodeFence(text)
		tasks, err := decodeTaskList(cleaned)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
		}
		result.Text = cleaned
		result.Tasks = tasks
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrMalformedResult, shape)
	}
	return result, nil
}

// decodeTaskList 接受数组或 {"tasks": [...]}
func decodeTaskList(s string) ([]TaskPayload, error) {
	if strings.HasPrefix(s, "[") {
		var tasks []TaskPayload
		if err := json.Unmarshal([]byte(s), &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}
	var wrapper struct {
		Tasks []TaskPayload `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(s), &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Tasks == nil {
		return nil, fmt.Errorf("missing tasks array")
	}
	return wrapper.Tasks, nil
}

// stripCodeFence 去掉 ```json ... ``` 包裹
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
