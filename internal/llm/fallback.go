package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// FallbackClient 依次尝试多个 Provider，返回第一个成功的结果。
// 未配置 Key 的 Provider 会被跳过。
type FallbackClient struct {
	providers []Provider
	logger    *slog.Logger
}

// NewFallbackClient 按给定顺序构造回退链。
func NewFallbackClient(logger *slog.Logger, providers ...Provider) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{providers: providers, logger: logger}
}

// Providers 返回回退链中的全部 Provider。
func (f *FallbackClient) Providers() []Provider {
	out := make([]Provider, len(f.providers))
	copy(out, f.providers)
	return out
}

// Configured 报告是否至少有一个 Provider 配置了 Key。
func (f *FallbackClient) Configured() bool {
	for _, p := range f.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

func (f *FallbackClient) Name() string { return "fallback" }

// Complete 实现 Client。所有 Provider 失败时返回合并后的错误，
// errors.Is 与 errors.As 仍能识别每个 Provider 的失败原因。
func (f *FallbackClient) Complete(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for _, p := range f.providers {
		if !p.Configured() {
			continue
		}
		out, err := p.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Join(errs...)
		}
		f.logger.Warn("llm provider failed, trying next", "provider", p.Name(), "error", err)
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("no llm provider configured: %w", ErrAPIKeyMissing)
	}
	return "", errors.Join(errs...)
}
