package service

import (
	"context"
	"errors"
	"time"

	"github.com/wavesignals/internal/llm"
)

const diagnosticPrompt = "Reply with the single word OK."

// ProviderStatus 描述一个模型提供方的连通性。
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	OK         bool   `json:"ok"`
	LatencyMS  int64  `json:"latencyMs,omitempty"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DiagnoseProviders 依次向每个提供方发送一次探测请求。
func DiagnoseProviders(ctx context.Context, providers []llm.Provider) []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(providers))
	for _, p := range providers {
		status := ProviderStatus{Name: p.Name(), Configured: p.Configured()}
		if !status.Configured {
			status.Error = llm.ErrAPIKeyMissing.Error()
			statuses = append(statuses, status)
			continue
		}

		started := time.Now()
		out, err := p.Complete(ctx, diagnosticPrompt)
		status.LatencyMS = time.Since(started).Milliseconds()
		if err != nil {
			status.Error = err.Error()
			if errors.Is(err, context.Canceled) {
				statuses = append(statuses, status)
				return statuses
			}
		} else {
			status.OK = true
			status.Response = truncateRunes(out, 100)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func truncateRunes(input string, limit int) string {
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
