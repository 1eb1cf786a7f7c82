package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/wavesignals/internal/llm"
	"github.com/wavesignals/internal/topic"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Pipeline 串行执行四个生成阶段。
type Pipeline struct {
	llm      llm.Client
	logger   *slog.Logger
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// New 构造 Pipeline。
func New(client llm.Client, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		llm:      client,
		logger:   logger,
		policy:   bluemonday.UGCPolicy(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Generate 为给定主题运行完整流程。初稿或编辑阶段失败时返回 *StageError，
// 不会产生部分结果。
func (p *Pipeline) Generate(ctx context.Context, t topic.Topic) (Result, error) {
	gc := GenerationContext{Topic: t}
	log := p.logger.With("topic", t.Title, "category", t.Category)

	log.Info("drafting post")
	draft, err := p.draft(ctx, t)
	if err != nil {
		return Result{}, &StageError{Stage: StageDraft, Err: err}
	}
	gc.Draft = draft

	log.Info("researching keywords")
	gc.Keywords = p.research(ctx, t, gc.Draft)

	log.Info("editing draft")
	edited, err := p.edit(ctx, t, gc.Draft, gc.Keywords)
	if err != nil {
		return Result{}, &StageError{Stage: StageEdit, Err: err}
	}
	gc.Edited = edited

	log.Info("humanizing content")
	gc.Humanized = p.humanize(ctx, gc.Edited.Content)

	content := strings.TrimSpace(p.policy.Sanitize(gc.Humanized))
	if !ValidateHTMLFragment(content) {
		return Result{}, &StageError{Stage: StageSanitize, Err: ErrContentNotHTML}
	}

	keywords, hashtags, queries := mergeLists(gc.Keywords, gc.Edited)
	return Result{
		Title:           gc.Edited.Title,
		Content:         content,
		Excerpt:         gc.Edited.Excerpt,
		MetaDescription: gc.Edited.MetaDescription,
		Category:        t.Category,
		Keywords:        keywords,
		Hashtags:        hashtags,
		SearchQueries:   queries,
	}, nil
}
