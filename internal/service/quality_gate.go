package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/pipeline"
)

const (
	minQualityWords      = 600
	minHookRunes         = 80
	minQualityTitleRunes = 10
)

var bannedPhrases = []string{
	"in this article",
	"this article will",
	"we will explore",
	"let us explore",
	"as an ai",
	"lorem ipsum",
	"[paste",
	"placeholder",
}

// QualityGate 在写入前拦截明显低质量的文章。
type QualityGate struct {
	posts *PostService
}

// NewQualityGate 构造 QualityGate。
func NewQualityGate(posts *PostService) *QualityGate {
	return &QualityGate{posts: posts}
}

// Check 返回未通过的检查项，空切片表示通过。
func (g *QualityGate) Check(ctx context.Context, result pipeline.Result) ([]string, error) {
	var problems []string

	title := strings.TrimSpace(result.Title)
	if utf8.RuneCountInString(title) < minQualityTitleRunes {
		problems = append(problems, "title too short")
	}
	taken, err := g.posts.titleTaken(ctx, title)
	if err != nil {
		return nil, err
	}
	if taken {
		problems = append(problems, "duplicate title")
	}

	if words := len(strings.Fields(pipeline.PlainText(result.Content))); words < minQualityWords {
		problems = append(problems, fmt.Sprintf("word count too low (%d)", words))
	}

	if !hasHook(result.Content) {
		problems = append(problems, "weak or missing hook paragraph")
	}

	lower := strings.ToLower(result.Content)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			problems = append(problems, fmt.Sprintf("contains banned phrase %q", phrase))
			break
		}
	}

	return problems, nil
}

// hasHook 检查第一个段落是否足够长且不以冒号结尾。
func hasHook(content string) bool {
	first := content
	if idx := strings.Index(content, "</p>"); idx >= 0 {
		first = content[:idx]
	}
	if idx := strings.LastIndex(first, "<p"); idx >= 0 {
		first = first[idx:]
	}
	text := pipeline.PlainText(first + "</p>")
	return utf8.RuneCountInString(text) >= minHookRunes && !strings.HasSuffix(text, ":")
}

func (s *PostService) titleTaken(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Post{}).
		Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title))).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check duplicate title: %w", err)
	}
	return count > 0, nil
}
