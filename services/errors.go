package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited 限流，可在同一模型上重试
	ErrRateLimited = errors.New("generation rate limited")
	// ErrCapabilityUnavailable 模型不存在或不可用，切换到下一个模型
	ErrCapabilityUnavailable = errors.New("generation capability unavailable")
	// ErrMalformedResult 返回内容无法解析或校验失败，不重试
	ErrMalformedResult = errors.New("malformed generation result")
	// ErrGenerationUnavailable 终态错误，所有模型和重试均已用尽
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
)

// GenerationError 生成失败的终态错误，同时匹配 ErrGenerationUnavailable 和具体原因
type GenerationError struct {
	Variant string
	Attempt int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation unavailable (variant=%s attempt=%d): %v", e.Variant, e.Attempt, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationUnavailable, e.Err}
}

// classifyProviderError 根据错误信息归类供应商错误
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "resource_exhausted"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case strings.Contains(msg, "404"),
		strings.Contains(msg, "not_found"),
		strings.Contains(msg, "model_not_found"),
		strings.Contains(msg, "model not found"),
		strings.Contains(msg, "does not exist"):
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}
	return err
}
