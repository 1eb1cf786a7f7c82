package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash"
	geminiKeyHeader      = "x-goog-api-key"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiOptions 配置 Gemini REST 客户端。
type GeminiOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// GeminiClient 通过 generateContent REST 接口调用 Gemini。
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	timeout     time.Duration
	temperature float64
	maxTokens   int
	http        httpDoer
	logger      *slog.Logger
}

// NewGeminiClient 构造 GeminiClient，空字段使用默认值。
func NewGeminiClient(opts GeminiOptions, logger *slog.Logger) *GeminiClient {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	c := &GeminiClient{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       model,
		timeout:     timeout,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
	}
	c.SetBaseURL(opts.BaseURL)
	return c
}

// SetHTTPClient 替换底层 HTTP 客户端，主要面向测试场景。
func (c *GeminiClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: c.timeout}
		return
	}
	c.http = client
}

// SetBaseURL 覆盖 API 基础地址，便于测试或自定义代理。
func (c *GeminiClient) SetBaseURL(base string) {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		trimmed = defaultGeminiBaseURL
	}
	c.baseURL = trimmed
}

func (c *GeminiClient) Name() string { return "Gemini" }

func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

// Complete 发起一次 generateContent 调用。
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	label := c.Name()
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", label, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", label, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wavesignals-bot/1.0")
	// 密钥只放在请求头里，传输错误会带上 URL。
	req.Header.Set(geminiKeyHeader, c.apiKey)

	logExchange(c.logger, label, "request", prompt)

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s API: %w", label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", label, err)
	}

	var decoded geminiResponse
	decodeErr := json.Unmarshal(respBody, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(decoded.Error.Message)
		}
		if msg == "" {
			msg = truncateRunes(strings.TrimSpace(string(respBody)), 512)
		}
		return "", &StatusError{Provider: label, StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode %s response: %v", ErrMalformedResponse, label, decodeErr)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		if reason := strings.TrimSpace(decoded.PromptFeedback.BlockReason); reason != "" {
			return "", fmt.Errorf("%w: %s blocked the prompt (%s)", ErrMalformedResponse, label, reason)
		}
		return "", fmt.Errorf("%w: %s returned no candidates", ErrMalformedResponse, label)
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return "", fmt.Errorf("%w: %s returned empty text", ErrMalformedResponse, label)
	}

	logExchange(c.logger, label, "response", content)
	return content, nil
}
