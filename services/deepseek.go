package services

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DeepseekClient OpenAI 兼容接口，陪伴聊天和生成均可使用
type DeepseekClient struct {
	DsChat llms.Model
}

func NewDeepseekClient(apiKey, apiEndpoint, chatModel string) (*DeepseekClient, error) {
	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(apiEndpoint),
		openai.WithModel(chatModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Deepseek client: %w", err)
	}

	return &DeepseekClient{
		DsChat: model,
	}, nil
}

// Generate 实现 TextGenerator，variant 覆盖默认模型
func (c *DeepseekClient) Generate(ctx context.Context, variant, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.DsChat, prompt,
		llms.WithModel(variant),
		llms.WithTemperature(0.4),
	)
	if err != nil {
		return "", classifyProviderError(fmt.Errorf("deepseek %s: %w", variant, err))
	}
	return out, nil
}
