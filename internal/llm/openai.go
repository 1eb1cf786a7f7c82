package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultSystemPrompt = "You are a senior technology columnist who writes analytical, first-person essays."
)

// OpenAIOptions 配置 OpenAI 客户端。
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	Timeout      time.Duration
	Temperature  float64
	MaxTokens    int
	HTTPClient   *http.Client
}

// OpenAIClient 使用官方 openai-go SDK 调用 chat completions。
// SDK 自带的重试被关闭，失败直接交给回退链处理。
type OpenAIClient struct {
	client       openai.Client
	configured   bool
	model        string
	systemPrompt string
	timeout      time.Duration
	temperature  float64
	maxTokens    int
	logger       *slog.Logger
}

// NewOpenAIClient 构造 OpenAIClient。
func NewOpenAIClient(opts OpenAIOptions, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenAIClient{
		client:       openai.NewClient(reqOpts...),
		configured:   apiKey != "",
		model:        model,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
		logger:       logger,
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI" }

func (c *OpenAIClient) Configured() bool { return c.configured }

// Complete 发起一次 chat completion 调用。
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	label := c.Name()
	if !c.configured {
		return "", ErrAPIKeyMissing
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logExchange(c.logger, label, "request", prompt)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := strings.TrimSpace(apiErr.Message)
			if msg == "" {
				msg = truncateRunes(apiErr.Error(), 512)
			}
			return "", &StatusError{Provider: label, StatusCode: apiErr.StatusCode, Message: msg}
		}
		return "", fmt.Errorf("call %s API: %w", label, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", ErrMalformedResponse, label)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: %s returned empty text", ErrMalformedResponse, label)
	}

	logExchange(c.logger, label, "response", content)
	return content, nil
}
