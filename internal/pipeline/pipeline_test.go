package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavesignals/internal/llm"
	"github.com/wavesignals/internal/logger"
	"github.com/wavesignals/internal/topic"
)

type scriptedReply struct {
	out string
	err error
}

// scriptedLLM 按调用顺序返回预设回复，并记录收到的提示词。
type scriptedLLM struct {
	replies []scriptedReply
	prompts []string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("unexpected call")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.out, next.err
}

var testTopic = topic.Topic{Category: "Developer Tools", Title: "Rust vs Go for Backend Services"}

const longArticle = "<h2>Why this matters</h2><p>I have spent the better part of a decade shipping backend services, and the language debate keeps coming back in new clothes. " +
	"The honest answer is that the trade-offs have shifted as tooling matured on both sides.</p>" +
	"<p>What surprised me most was how little the benchmark numbers mattered once teams started operating these systems in production.</p>"

func editJSON(t *testing.T, fields map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return string(raw)
}

func defaultEdit(t *testing.T, content string) string {
	return editJSON(t, map[string]any{
		"title":            "Rust or Go? What Production Taught Me",
		"meta_description": "A first-person look at Rust and Go in production.",
		"excerpt":          "Benchmarks matter less than you think.",
		"keywords":         []string{"rust", "golang", "backend"},
		"hashtags":         []string{"#Rust", "GoLang"},
		"search_queries":   []string{"rust vs go backend"},
		"content":          content,
	})
}

const keywordReply = "```json\n" + `{
  "primary_keywords": ["Rust", "Go", "backend languages", "ignored fourth"],
  "long_tail_keywords": ["rust vs go performance", "go concurrency model", "rust memory safety"],
  "trending_keywords": ["rust adoption"],
  "hashtags": ["#Rust", "#Golang", "#Backend"],
  "search_queries": ["is rust faster than go", "go vs rust 2025"]
}` + "\n```"

func newTestPipeline(client llm.Client) *Pipeline {
	return New(client, logger.Discard())
}

func TestGenerateHappyPath(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<h2>Draft</h2><p>" + strings.Repeat("draft text ", 80) + "</p>"},
		{out: keywordReply},
		{out: "Sure thing!\n" + defaultEdit(t, longArticle) + "\nLet me know if you need more."},
		{out: longArticle},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)

	assert.Equal(t, "Rust or Go? What Production Taught Me", result.Title)
	assert.True(t, ValidateHTMLFragment(result.Content))
	assert.Equal(t, "Developer Tools", result.Category)
	assert.Equal(t, []string{"Rust", "Go", "backend languages", "rust vs go performance", "go concurrency model", "golang", "backend"}, result.Keywords)
	assert.Equal(t, []string{"#Rust", "#Golang", "#Backend"}, result.Hashtags)
	assert.Equal(t, []string{"is rust faster than go", "go vs rust 2025", "rust vs go backend"}, result.SearchQueries)

	require.Len(t, client.prompts, 4)
	assert.Contains(t, client.prompts[0], testTopic.Title)
	assert.Contains(t, client.prompts[2], "Developer Tools")
}

func TestGenerateListCaps(t *testing.T) {
	many := func(prefix string, n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = prefix + string(rune('a'+i))
		}
		return out
	}
	research, _ := json.Marshal(map[string]any{
		"primary_keywords":   many("p", 5),
		"long_tail_keywords": many("l", 5),
		"hashtags":           many("#h", 9),
		"search_queries":     many("q", 6),
	})
	edit := editJSON(t, map[string]any{
		"title":          "Caps",
		"keywords":       many("e", 10),
		"hashtags":       many("x", 10),
		"search_queries": many("s", 10),
		"content":        longArticle,
	})
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: string(research)},
		{out: edit},
		{out: longArticle},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Len(t, result.Keywords, MaxKeywords)
	assert.Len(t, result.Hashtags, MaxHashtags)
	assert.Len(t, result.SearchQueries, MaxSearchQueries)
	assert.Equal(t, []string{"pa", "pb", "pc", "la", "lb", "ea", "eb"}, result.Keywords)
}

func TestGenerateDraftFailureAborts(t *testing.T) {
	rateLimited := &llm.StatusError{Provider: "Gemini", StatusCode: http.StatusTooManyRequests, Message: "quota exhausted"}
	client := &scriptedLLM{replies: []scriptedReply{{err: rateLimited}}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.Error(t, err)
	assert.Equal(t, Result{}, result)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDraft, stageErr.Stage)
	assert.True(t, llm.IsRateLimited(err))
	assert.Contains(t, err.Error(), "429")
	assert.Len(t, client.prompts, 1)
}

func TestGenerateKeywordFailureFallsBackToEmptyBundle(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: "I could not come up with keywords"},
		{out: defaultEdit(t, longArticle)},
		{out: longArticle},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "golang", "backend"}, result.Keywords)
	assert.Equal(t, []string{"#Rust", "#GoLang"}, result.Hashtags)
}

func TestGenerateEditValidation(t *testing.T) {
	tests := []struct {
		name    string
		reply   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "leakage marker",
			reply:   func(t *testing.T) string { return defaultEdit(t, "<p>Here is the edited article with the following changes.</p>") },
			wantErr: ErrContentArtifact,
		},
		{
			name:    "code fence inside content",
			reply:   func(t *testing.T) string { return defaultEdit(t, longArticle+"```json<p>Trailing leaked block that the model emitted.</p>") },
			wantErr: ErrContentArtifact,
		},
		{
			name: "code fence inside fenced reply",
			reply: func(t *testing.T) string {
				return "```json\n" + defaultEdit(t, longArticle+"```json<p>Trailing leaked block.</p>") + "\n```"
			},
			wantErr: ErrContentArtifact,
		},
		{
			name:    "nested json in content",
			reply:   func(t *testing.T) string { return defaultEdit(t, `<p>{"title": "oops"}</p>`) },
			wantErr: ErrContentArtifact,
		},
		{
			name:    "not html",
			reply:   func(t *testing.T) string { return defaultEdit(t, "Plain text article without tags.") },
			wantErr: ErrContentNotHTML,
		},
		{
			name:    "no closing tag to truncate to",
			reply:   func(t *testing.T) string { return defaultEdit(t, "<h3>Heading</h3> dangling text") },
			wantErr: ErrContentNotHTML,
		},
		{
			name: "content is not a string",
			reply: func(t *testing.T) string {
				return editJSON(t, map[string]any{"title": "x", "content": []string{"<p>a</p>"}})
			},
			wantErr: ErrContentNotString,
		},
		{
			name:    "content missing",
			reply:   func(t *testing.T) string { return editJSON(t, map[string]any{"title": "x"}) },
			wantErr: ErrContentNotString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedLLM{replies: []scriptedReply{
				{out: "<p>draft</p>"},
				{out: keywordReply},
				{out: tt.reply(t)},
			}}

			_, err := newTestPipeline(client).Generate(context.Background(), testTopic)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, StageEdit, stageErr.Stage)
			assert.Len(t, client.prompts, 3, "humanize must not run after an edit failure")
		})
	}
}

func TestGenerateEditUnparseable(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: keywordReply},
		{out: "I rewrote it but forgot the JSON"},
	}}

	_, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestGenerateEditTruncatesToClosingTag(t *testing.T) {
	content := longArticle + "<p>trailing paragraph that was cut off mid"
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: keywordReply},
		{out: defaultEdit(t, content)},
		{out: "too short"},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Equal(t, longArticle, result.Content)
}

func TestGenerateEditSalvagesMissingFields(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: keywordReply},
		{out: editJSON(t, map[string]any{"content": longArticle})},
		{out: longArticle},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Equal(t, testTopic.Title, result.Title)
	assert.NotEmpty(t, result.Excerpt)
	assert.LessOrEqual(t, len([]rune(result.MetaDescription)), 160)
	assert.True(t, strings.HasPrefix(result.Excerpt, "Why this matters"))
}

func TestGenerateShortHumanizeKeepsEditedContent(t *testing.T) {
	edited := "<h2>Edited</h2><p>The edited body that should survive.</p>"
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: keywordReply},
		{out: defaultEdit(t, edited)},
		{out: strings.Repeat("x", 50)},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Equal(t, edited, result.Content)
}

func TestGenerateHumanizeFailureKeepsEditedContent(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "<p>draft</p>"},
		{out: keywordReply},
		{out: defaultEdit(t, longArticle)},
		{err: errors.New("timeout")},
	}}

	result, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	assert.Equal(t, longArticle, result.Content)
}

func TestGenerateMarkdownDraftIsRendered(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{
		{out: "```markdown\n## Heading\n\nSome **bold** analysis.\n```"},
		{out: keywordReply},
		{out: defaultEdit(t, longArticle)},
		{out: longArticle},
	}}

	_, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	require.NoError(t, err)
	require.Len(t, client.prompts, 4)
	assert.Contains(t, client.prompts[2], "<h2>Heading</h2>")
	assert.Contains(t, client.prompts[2], "<strong>bold</strong>")
}

func TestGenerateEmptyDraftAborts(t *testing.T) {
	client := &scriptedLLM{replies: []scriptedReply{{out: "```\n```"}}}

	_, err := newTestPipeline(client).Generate(context.Background(), testTopic)
	assert.ErrorIs(t, err, ErrEmptyDraft)
}
