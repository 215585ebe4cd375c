package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator 基于 Google GenAI 的文本生成
type GeminiGenerator struct {
	client      *genai.Client
	temperature float32
}

// NewGeminiGenerator 创建 Gemini 客户端
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, temperature: 0.4}, nil
}

// Generate 实现 TextGenerator
func (g *GeminiGenerator) Generate(ctx context.Context, variant, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, variant, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", classifyProviderError(fmt.Errorf("gemini %s: %w", variant, err))
	}
	return resp.Text(), nil
}
