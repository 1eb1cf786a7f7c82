// Package pipeline 实现四阶段的文章生成流程：初稿、关键词研究、编辑、润色。
//
// 每个阶段只调用一次模型。初稿与编辑阶段失败会终止流程，
// 关键词与润色阶段失败时回退到安全的默认结果。
package pipeline

import (
	"errors"
	"fmt"

	"github.com/wavesignals/internal/topic"
)

// 阶段名称，用于 StageError 与日志。
const (
	StageDraft    = "draft"
	StageKeywords = "keyword_research"
	StageEdit     = "edit"
	StageHumanize = "humanize"
	StageSanitize = "sanitize"
)

// 列表字段的上限。
const (
	MaxKeywords      = 7
	MaxHashtags      = 5
	MaxSearchQueries = 3
	maxPrimary       = 3
	longTailTaken    = 2
)

var (
	// ErrContentNotString 表示编辑阶段返回的 content 字段不是字符串。
	ErrContentNotString = errors.New("edited content is not a string")
	// ErrContentArtifact 表示正文中出现了模型的说明文字或结构化残留。
	ErrContentArtifact = errors.New("edited content contains model artifacts")
	// ErrContentNotHTML 表示正文不是合法的 HTML 片段。
	ErrContentNotHTML = errors.New("content is not a valid HTML fragment")
	// ErrEmptyDraft 表示初稿为空。
	ErrEmptyDraft = errors.New("draft is empty")
)

// StageError 记录导致流程终止的阶段与原因。
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// KeywordBundle 是关键词研究阶段的结构化输出。
type KeywordBundle struct {
	Primary       []string
	LongTail      []string
	Trending      []string
	Hashtags      []string
	SearchQueries []string
}

// Empty 报告研究结果是否完全为空。
func (b KeywordBundle) Empty() bool {
	return len(b.Primary) == 0 && len(b.LongTail) == 0 && len(b.Trending) == 0 &&
		len(b.Hashtags) == 0 && len(b.SearchQueries) == 0
}

// EditedPost 是编辑阶段校验后的字段。
type EditedPost struct {
	Title           string
	MetaDescription string
	Excerpt         string
	Content         string
	Keywords        []string
	Hashtags        []string
	SearchQueries   []string
}

// GenerationContext 是单次运行的中间状态，运行结束后即丢弃。
type GenerationContext struct {
	Topic     topic.Topic
	Draft     string
	Keywords  KeywordBundle
	Edited    EditedPost
	Humanized string
}

// Result 是流程成功后交给发布器的最终字段。
type Result struct {
	Title           string
	Content         string
	Excerpt         string
	MetaDescription string
	Category        string
	Keywords        []string
	Hashtags        []string
	SearchQueries   []string
}
