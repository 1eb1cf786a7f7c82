package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wavesignals/internal/pipeline"
	"github.com/wavesignals/internal/topic"
)

// ContentGenerator 为主题生成文章字段。
type ContentGenerator interface {
	Generate(ctx context.Context, t topic.Topic) (pipeline.Result, error)
}

// TopicPicker 随机给出一个主题。
type TopicPicker interface {
	Pick() topic.Topic
}

// PublishResult 是一次发布尝试的结果，失败同样以值返回。
type PublishResult struct {
	Success        bool     `json:"success"`
	RunID          string   `json:"runId"`
	ID             uint     `json:"id,omitempty"`
	Title          string   `json:"title,omitempty"`
	Slug           string   `json:"slug,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Error          string   `json:"error,omitempty"`
	HoursRemaining *float64 `json:"hoursRemaining,omitempty"`
}

// Publisher 串联限流、选题、生成与写库。
type Publisher struct {
	mu        sync.Mutex
	limiter   *RateLimiter
	topics    TopicPicker
	generator ContentGenerator
	posts     *PostService
	gate      *QualityGate
	author    string
	logger    *slog.Logger
}

// NewPublisher 构造 Publisher。gate 为 nil 时不做质量检查。
func NewPublisher(limiter *RateLimiter, topics TopicPicker, generator ContentGenerator, posts *PostService, gate *QualityGate, author string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "WaveSignals AI"
	}
	return &Publisher{
		limiter:   limiter,
		topics:    topics,
		generator: generator,
		posts:     posts,
		gate:      gate,
		author:    author,
		logger:    logger,
	}
}

// Publish 执行一次完整的发布尝试。同一进程内的调用会被串行化，
// 避免定时任务与手动触发同时通过限流检查。
func (p *Publisher) Publish(ctx context.Context, override bool) PublishResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := PublishResult{RunID: uuid.NewString()}
	log := p.logger.With("run_id", result.RunID)

	decision, err := p.limiter.Check(ctx, override)
	if err != nil {
		log.Error("rate limit check failed", "error", err)
		result.Error = fmt.Sprintf("rate limit check failed: %v", err)
		return result
	}
	if !decision.Allowed {
		result.HoursRemaining = decision.HoursRemaining
		result.Error = fmt.Sprintf("rate limited: next post allowed in %.1f hours", *decision.HoursRemaining)
		return result
	}

	t := p.topics.Pick()
	result.Topic = t.Title
	log = log.With("topic", t.Title, "category", t.Category)
	log.Info("generating post")

	generated, err := p.generator.Generate(ctx, t)
	if err != nil {
		log.Error("content generation failed", "error", err)
		result.Error = fmt.Sprintf("content generation failed: %v", err)
		return result
	}

	if p.gate != nil {
		problems, err := p.gate.Check(ctx, generated)
		if err != nil {
			log.Error("quality gate failed", "error", err)
			result.Error = fmt.Sprintf("quality gate failed: %v", err)
			return result
		}
		if len(problems) > 0 {
			log.Warn("quality gate rejected post", "problems", problems)
			result.Error = "quality gate rejected post: " + strings.Join(problems, "; ")
			return result
		}
	}

	published := true
	post, err := p.posts.Create(ctx, PostInput{
		Title:           generated.Title,
		Excerpt:         generated.Excerpt,
		Content:         generated.Content,
		Tags:            generated.Category,
		MetaDescription: generated.MetaDescription,
		Keywords:        generated.Keywords,
		Hashtags:        generated.Hashtags,
		SearchQueries:   generated.SearchQueries,
		Author:          p.author,
		Published:       &published,
	})
	if err != nil {
		log.Error("failed to save post", "error", err)
		result.Error = fmt.Sprintf("failed to save post: %v", err)
		return result
	}

	log.Info("post published", "post_id", post.ID, "slug", post.Slug)
	result.Success = true
	result.ID = post.ID
	result.Title = post.Title
	result.Slug = post.Slug
	return result
}
