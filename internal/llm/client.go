// Package llm 封装对托管大模型的单次调用。
//
// 每个 Client 只发起一次请求，不做重试；所有失败都以 error 值返回，
// 由调用方决定回退策略。
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Client 向模型发送一段提示词并返回生成的文本。
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider 是带有名称与配置状态的 Client，用于回退链与诊断接口。
type Provider interface {
	Client
	Name() string
	Configured() bool
}

// ErrAPIKeyMissing 表示未提供必需的模型平台 API Key。
var ErrAPIKeyMissing = errors.New("api key is required")

// ErrMalformedResponse 表示响应体无法解析或缺少生成内容。
var ErrMalformedResponse = errors.New("malformed model response")

// StatusError 表示模型接口返回了非 200 状态码。
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, msg)
}

// IsRateLimited 判断错误链中是否包含 429 响应。
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(input) <= limit {
		return input
	}
	return string([]rune(input)[:limit])
}
