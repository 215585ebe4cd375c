package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errQuota    = classifyProviderError(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"))
	errNoModel  = classifyProviderError(errors.New("Error 404: model not found"))
	errInternal = errors.New("connection reset by peer")
)

const validScoreJSON = `{"score": 72, "reasoning": "steady week", "confidence": "high"}`

func newTestAdapter(t *testing.T, gen TextGenerator, variants ...string) (*GenerationAdapter, *[]time.Duration) {
	t.Helper()
	if len(variants) == 0 {
		variants = []string{"primary", "secondary"}
	}
	adapter, err := NewGenerationAdapter(gen, variants)
	require.NoError(t, err)

	var slept []time.Duration
	adapter.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return adapter, &slept
}

func TestInvokeParsesFencedScore(t *testing.T) {
	gen := newFakeGenerator().on("primary", scriptedReply{text: "```json\n" + validScoreJSON + "\n```"})
	adapter, slept := newTestAdapter(t, gen)

	result, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.NoError(t, err)
	require.NotNil(t, result.Score)
	require.NotNil(t, result.Score.Score)
	assert.Equal(t, 72.0, *result.Score.Score)
	assert.Equal(t, "high", result.Score.Confidence)
	assert.Equal(t, "primary", result.Variant)
	assert.Empty(t, *slept)
}

func TestInvokeRetriesRateLimitOnSameVariant(t *testing.T) {
	gen := newFakeGenerator().on("primary",
		scriptedReply{err: errQuota},
		scriptedReply{err: errQuota},
		scriptedReply{text: validScoreJSON},
	)
	adapter, slept := newTestAdapter(t, gen)

	result, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.NoError(t, err)
	assert.Equal(t, "primary", result.Variant)
	assert.Equal(t, []string{"primary", "primary", "primary"}, gen.callLog())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, *slept)
	assert.Equal(t, "primary", adapter.CurrentVariant())
}

func TestInvokeGivesUpAfterTwoRateLimitRetries(t *testing.T) {
	gen := newFakeGenerator().on("primary", scriptedReply{err: errQuota})
	adapter, slept := newTestAdapter(t, gen)

	_, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, ErrRateLimited)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempt)
	assert.Equal(t, "primary", genErr.Variant)
	assert.Len(t, gen.callLog(), 3)
	assert.Len(t, *slept, 2)
}

func TestInvokeFailsOverAndSticks(t *testing.T) {
	gen := newFakeGenerator().
		on("primary", scriptedReply{err: errNoModel}).
		on("secondary", scriptedReply{text: validScoreJSON})
	adapter, slept := newTestAdapter(t, gen)

	result, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.NoError(t, err)
	assert.Equal(t, "secondary", result.Variant)
	assert.Equal(t, "secondary", adapter.CurrentVariant())
	assert.Empty(t, *slept)

	// 后续调用直接从 secondary 开始
	_, err = adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "secondary", "secondary"}, gen.callLog())
}

func TestInvokeCascadesThroughVariants(t *testing.T) {
	gen := newFakeGenerator().
		on("a", scriptedReply{err: errNoModel}).
		on("b", scriptedReply{err: errNoModel}).
		on("c", scriptedReply{text: validScoreJSON})
	adapter, _ := newTestAdapter(t, gen, "a", "b", "c")

	result, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	require.NoError(t, err)
	assert.Equal(t, "c", result.Variant)
	assert.Equal(t, "c", adapter.CurrentVariant())
}

func TestInvokeCapabilityUnavailableOnLastVariant(t *testing.T) {
	gen := newFakeGenerator().
		on("primary", scriptedReply{err: errNoModel}).
		on("secondary", scriptedReply{err: errNoModel})
	adapter, _ := newTestAdapter(t, gen)

	_, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	assert.Equal(t, []string{"primary", "secondary"}, gen.callLog())
}

func TestInvokeNoFailoverAfterRateLimitRetry(t *testing.T) {
	gen := newFakeGenerator().on("primary",
		scriptedReply{err: errQuota},
		scriptedReply{err: errNoModel},
	)
	adapter, slept := newTestAdapter(t, gen)

	_, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	assert.Equal(t, []string{"primary", "primary"}, gen.callLog())
	assert.Equal(t, []time.Duration{3 * time.Second}, *slept)
	assert.Equal(t, "primary", adapter.CurrentVariant())
}

func TestInvokeMalformedResultIsNotRetried(t *testing.T) {
	gen := newFakeGenerator().on("primary", scriptedReply{text: "I think the score is about 70"})
	adapter, slept := newTestAdapter(t, gen)

	_, err := adapter.Invoke(context.Background(), "prompt", ShapeJSONScore)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, ErrMalformedResult)
	assert.Len(t, gen.callLog(), 1)
	assert.Empty(t, *slept)
}

func TestInvokeOtherErrorsAreTerminal(t *testing.T) {
	gen := newFakeGenerator().on("primary", scriptedReply{err: errInternal})
	adapter, _ := newTestAdapter(t, gen)

	_, err := adapter.Invoke(context.Background(), "prompt", ShapeFreeText)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, errInternal)
	assert.Len(t, gen.callLog(), 1)
}

func TestInvokeStopsWhenContextCancelled(t *testing.T) {
	gen := newFakeGenerator().on("primary", scriptedReply{err: errQuota})
	adapter, err := NewGenerationAdapter(gen, []string{"primary", "secondary"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = adapter.Invoke(ctx, "prompt", ShapeFreeText)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, gen.callLog(), 1)
}

func TestAdaptersDoNotShareVariantState(t *testing.T) {
	gen := newFakeGenerator().
		on("primary", scriptedReply{err: errNoModel}, scriptedReply{text: "hello"}).
		on("secondary", scriptedReply{text: "hello"})
	first, _ := newTestAdapter(t, gen)
	second, _ := newTestAdapter(t, gen)

	_, err := first.Invoke(context.Background(), "prompt", ShapeFreeText)
	require.NoError(t, err)
	assert.Equal(t, "secondary", first.CurrentVariant())
	assert.Equal(t, "primary", second.CurrentVariant())
}

func TestNewGenerationAdapterValidation(t *testing.T) {
	_, err := NewGenerationAdapter(newFakeGenerator(), []string{"only"})
	assert.Error(t, err)

	_, err = NewGenerationAdapter(nil, []string{"a", "b"})
	assert.Error(t, err)
}

func TestParseTaskListShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"bare array", `[{"title":"a","description":"b","category":"Sleep","priority":"low"}]`, 1},
		{"wrapped", `{"tasks":[{"title":"a"},{"title":"b"}]}`, 2},
		{"fenced", "```json\n[{\"title\":\"a\"}]\n```", 1},
		{"fence without language", "```\n[{\"title\":\"a\"}]\n```", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseGeneration(ShapeJSONTaskList, tt.text)
			require.NoError(t, err)
			assert.Len(t, result.Tasks, tt.want)
		})
	}

	_, err := parseGeneration(ShapeJSONTaskList, `{"items": []}`)
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestParseFreeText(t *testing.T) {
	result, err := parseGeneration(ShapeFreeText, "  hello there \n")
	require.NoError(t, err)
	assert.Equal(t, "hello there", result.Text)

	_, err = parseGeneration(ShapeFreeText, "   ")
	assert.ErrorIs(t, err, ErrMalformedResult)
}

func TestClassifyProviderError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"Error 429: Too Many Requests", ErrRateLimited},
		{"rate limit exceeded", ErrRateLimited},
		{"RESOURCE_EXHAUSTED: quota", ErrRateLimited},
		{"Error 404: NOT_FOUND", ErrCapabilityUnavailable},
		{"The model `deepseek-x` does not exist", ErrCapabilityUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.ErrorIs(t, classifyProviderError(errors.New(tt.msg)), tt.want)
		})
	}

	other := classifyProviderError(errInternal)
	assert.NotErrorIs(t, other, ErrRateLimited)
	assert.NotErrorIs(t, other, ErrCapabilityUnavailable)
	assert.Nil(t, classifyProviderError(nil))
}
