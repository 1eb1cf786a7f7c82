package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wavesignals/internal/topic"
)

const (
	humanizeMinRunes = 200
	excerptRunes     = 160
	metaRunes        = 160
)

// draft 生成初稿。模型返回 Markdown 或 JSON 包装时会被转换为 HTML 片段。
func (p *Pipeline) draft(ctx context.Context, t topic.Topic) (string, error) {
	raw, err := p.llm.Complete(ctx, draftPrompt(t))
	if err != nil {
		return "", err
	}

	text := StripCodeFences(raw)
	if strings.HasPrefix(text, "{") {
		if obj, perr := ParseStructured(text); perr == nil {
			if content, ok := stringField(obj, "content"); ok {
				text = strings.TrimSpace(content)
			}
		}
	}
	if text == "" {
		return "", ErrEmptyDraft
	}
	if !strings.HasPrefix(text, "<") {
		var buf bytes.Buffer
		if err := p.markdown.Convert([]byte(text), &buf); err != nil {
			return "", fmt.Errorf("render markdown draft: %w", err)
		}
		text = strings.TrimSpace(buf.String())
	}
	return text, nil
}

// research 生成关键词。任何失败都返回空结果，不影响后续阶段。
func (p *Pipeline) research(ctx context.Context, t topic.Topic, draft string) KeywordBundle {
	raw, err := p.llm.Complete(ctx, keywordPrompt(t, draft))
	if err != nil {
		p.logger.Warn("keyword research failed, continuing without keywords", "topic", t.Title, "error", err)
		return KeywordBundle{}
	}

	obj, err := ParseStructured(raw)
	if err != nil {
		p.logger.Warn("keyword research returned unparseable output", "topic", t.Title, "error", err)
		return KeywordBundle{}
	}

	return KeywordBundle{
		Primary:       firstN(stringListField(obj, "primary_keywords"), maxPrimary),
		LongTail:      stringListField(obj, "long_tail_keywords"),
		Trending:      stringListField(obj, "trending_keywords"),
		Hashtags:      firstN(normalizeHashtags(stringListField(obj, "hashtags")), MaxHashtags),
		SearchQueries: firstN(stringListField(obj, "search_queries"), MaxSearchQueries),
	}
}

// edit 运行编辑阶段并校验正文。
func (p *Pipeline) edit(ctx context.Context, t topic.Topic, draft string, research KeywordBundle) (EditedPost, error) {
	raw, err := p.llm.Complete(ctx, editPrompt(t.Category, draft, research))
	if err != nil {
		return EditedPost{}, err
	}

	obj, err := ParseStructured(raw)
	if err != nil {
		return EditedPost{}, err
	}

	content, err := validateEditedContent(obj)
	if err != nil {
		return EditedPost{}, err
	}

	edited := EditedPost{
		Title:           cleanLine(obj, "title"),
		MetaDescription: cleanLine(obj, "meta_description"),
		Excerpt:         cleanLine(obj, "excerpt"),
		Content:         content,
		Keywords:        stringListField(obj, "keywords"),
		Hashtags:        stringListField(obj, "hashtags"),
		SearchQueries:   stringListField(obj, "search_queries"),
	}
	if edited.Title == "" {
		edited.Title = t.Title
	}
	if edited.Excerpt == "" {
		edited.Excerpt = summarize(content, excerptRunes)
	}
	if edited.MetaDescription == "" {
		edited.MetaDescription = edited.Excerpt
	}
	if utf8.RuneCountInString(edited.MetaDescription) > metaRunes {
		edited.MetaDescription = truncateRunes(edited.MetaDescription, metaRunes-1) + "…"
	}
	return edited, nil
}

func validateEditedContent(obj map[string]any) (string, error) {
	value, present := obj["content"]
	content, isString := value.(string)
	if !present || !isString {
		return "", ErrContentNotString
	}
	content = strings.TrimSpace(content)

	if marker, found := FindLeakageMarker(content); found {
		return "", fmt.Errorf("%w: found %q", ErrContentArtifact, marker)
	}
	if !strings.HasPrefix(content, "<") {
		return "", fmt.Errorf("%w: does not start with a tag", ErrContentNotHTML)
	}
	if !strings.HasSuffix(content, ">") {
		truncated, ok := TruncateToLastClosingTag(content)
		if !ok {
			return "", fmt.Errorf("%w: no closing tag to truncate to", ErrContentNotHTML)
		}
		content = truncated
	}
	return content, nil
}

func cleanLine(obj map[string]any, key string) string {
	value, _ := stringField(obj, key)
	return strings.Join(strings.Fields(value), " ")
}

// humanize 润色正文。回复过短或后处理失败时返回原文。
func (p *Pipeline) humanize(ctx context.Context, content string) string {
	raw, err := p.llm.Complete(ctx, humanizePrompt(content))
	if err != nil {
		p.logger.Warn("humanize failed, keeping edited content", "error", err)
		return content
	}

	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) <= humanizeMinRunes {
		p.logger.Warn("humanize reply too short, keeping edited content", "runes", utf8.RuneCountInString(trimmed))
		return content
	}

	cleaned, ok := cleanHumanized(trimmed)
	if !ok {
		p.logger.Warn("humanize reply could not be cleaned, keeping edited content")
		return content
	}
	return cleaned
}

// cleanHumanized 去掉代码围栏、JSON 包装、结尾的 Note 说明与多余符号。
func cleanHumanized(raw string) (string, bool) {
	text := StripCodeFences(raw)

	if strings.HasPrefix(text, "{") {
		obj, err := ParseStructured(text)
		if err != nil {
			return "", false
		}
		content, ok := stringField(obj, "content")
		if !ok {
			return "", false
		}
		text = strings.TrimSpace(content)
	}

	text = stripTrailingNote(text)
	text = strings.TrimRight(text, " \t\r\n}\"'`")

	if !strings.HasSuffix(text, ">") {
		truncated, ok := TruncateToLastClosingTag(text)
		if !ok {
			return "", false
		}
		text = truncated
	}

	if !ValidateHTMLFragment(text) {
		return "", false
	}
	if _, found := FindStructuralMarker(text); found {
		return "", false
	}
	return text, true
}

// stripTrailingNote 删除正文之后模型附加的 "Note:" 说明段落。
func stripTrailingNote(text string) string {
	idx := strings.LastIndex(text, "Note:")
	if idx < 0 {
		return text
	}
	lastTag := strings.LastIndex(text, ">")
	if lastTag > idx {
		return text
	}
	head := strings.TrimRight(text[:idx], " \t\r\n*_-")
	return head
}
