package services

import (
	"InnerCompassGo/models"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeChatModel 实现 llms.Model，按 chunks 依次回调流式函数
type fakeChatModel struct {
	mu       sync.Mutex
	chunks   []string
	reply    string
	err      error
	messages [][]llms.MessageContent
}

func (m *fakeChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, c := range m.chunks {
			if err := opts.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeChatModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func drain(ch <-chan string) string {
	var sb strings.Builder
	for chunk := range ch {
		sb.WriteString(chunk)
	}
	return sb.String()
}

func TestGenerateCompanionResponseStreams(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"That sounds ", "like a lot. ", "Try a short walk."}}
	svc := NewChatService(&DeepseekClient{DsChat: model}, nil)

	stream, err := svc.GenerateCompanionResponse(context.Background(), "rough day", "likes running", &models.ScoreSnapshot{Score: 35, Reasoning: "low mood"})
	require.NoError(t, err)
	assert.Equal(t, "That sounds like a lot. Try a short walk.", drain(stream))
	svc.Wait()

	require.Len(t, model.messages, 1)
	sent := model.messages[0]
	require.Len(t, sent, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, sent[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[2].Role)
}

func TestGenerateCompanionResponseReportsFailureInStream(t *testing.T) {
	svc := NewChatService(&DeepseekClient{DsChat: &fakeChatModel{err: errors.New("boom")}}, nil)

	stream, err := svc.GenerateCompanionResponse(context.Background(), "hello", "", nil)
	require.NoError(t, err)
	assert.Contains(t, drain(stream), "try again")
	svc.Wait()
}

func TestGenerateCompanionResponseWithoutClient(t *testing.T) {
	svc := NewChatService(nil, nil)
	_, err := svc.GenerateCompanionResponse(context.Background(), "hello", "", nil)
	assert.ErrorIs(t, err, ErrCompanionUnavailable)

	assert.Empty(t, svc.HistorySummary(context.Background(), "u1"))
	svc.UpdateSummaryAsync("u1", "hello", "hi", "")
	svc.Wait()
}

func TestGenerateSummary(t *testing.T) {
	model := &fakeChatModel{reply: "User felt stressed about exams."}
	svc := NewChatService(&DeepseekClient{DsChat: model}, nil)

	summary, err := svc.GenerateSummary(context.Background(), "User: exams\nCompanion: breathe", "earlier: sleep issues")
	require.NoError(t, err)
	assert.Equal(t, "User felt stressed about exams.", summary)
	require.Len(t, model.messages, 1)
	assert.Len(t, model.messages[0], 3)
}

func TestCompanionPromptIncludesScore(t *testing.T) {
	assert.NotContains(t, companionPrompt(nil), "wellness score is")
	assert.Contains(t, companionPrompt(&models.ScoreSnapshot{Score: 42, Reasoning: "few entries"}), "42/100")
}

func TestDeepseekGenerate(t *testing.T) {
	client := &DeepseekClient{DsChat: &fakeChatModel{reply: `{"score": 70}`}}
	out, err := client.Generate(context.Background(), "deepseek-chat", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"score": 70}`, out)

	limited := &DeepseekClient{DsChat: &fakeChatModel{err: errors.New("API returned unexpected status code: 429: Too Many Requests")}}
	_, err = limited.Generate(context.Background(), "deepseek-chat", "prompt")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCompanionSummaryRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	model := &fakeChatModel{reply: "User is calmer after a walk."}
	svc := NewChatService(&DeepseekClient{DsChat: model}, client)
	ctx := context.Background()

	assert.Empty(t, svc.HistorySummary(ctx, "u1"))

	svc.UpdateSummaryAsync("u1", "I went for a walk", "Glad it helped.", "")
	svc.Wait()

	stored, err := mr.Get("companion:u1")
	require.NoError(t, err)
	assert.Equal(t, "User is calmer after a walk.", stored)
	assert.Equal(t, summaryTTL, mr.TTL("companion:u1"))
	assert.Equal(t, stored, svc.HistorySummary(ctx, "u1"))
	assert.Empty(t, svc.HistorySummary(ctx, "u2"))
}

func TestCompanionSummaryKeepsPreviousOnFailure(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set("companion:u1", "earlier summary"))
	svc := NewChatService(&DeepseekClient{DsChat: &fakeChatModel{err: errors.New("boom")}}, client)

	svc.UpdateSummaryAsync("u1", "hi", "hello", "earlier summary")
	svc.Wait()

	assert.Equal(t, "earlier summary", svc.HistorySummary(context.Background(), "u1"))
}
