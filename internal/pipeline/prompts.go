package pipeline

import (
	"fmt"
	"strings"

	"github.com/wavesignals/internal/topic"
)

const (
	keywordDraftRunes  = 500
	editDraftRunes     = 15000
	humanizeInputRunes = 12000
)

func draftPrompt(t topic.Topic) string {
	return fmt.Sprintf(`You are a senior technology columnist writing for WaveSignals.

Write a long-form analytical essay on the topic "%s" (category: %s).

Style rules:
- Write in the first person, in an analytical and opinionated register, like a seasoned journalist thinking out loud.
- Do not write a listicle. No numbered "top N" structure.
- Do not use an imperative how-to voice. Do not address the reader with instructions.
- Open with a strong hook paragraph that states a concrete tension or observation.
- Aim for 900 to 1400 words with a few <h2> section headings.

Output format:
- Return only an HTML fragment using <h2>, <p>, <blockquote>, <ul>, <ol> and <li>.
- No <html>, <head> or <body> tags, no Markdown, no code fences, no commentary before or after the article.`, t.Title, t.Category)
}

func keywordPrompt(t topic.Topic, draft string) string {
	return fmt.Sprintf(`You are an SEO researcher. Given a blog topic and the opening of the draft, propose search keywords.

Topic: %s
Category: %s
Draft opening:
%s

Respond with a single JSON object and nothing else:
{
  "primary_keywords": ["at most 3 short head terms"],
  "long_tail_keywords": ["specific multi-word phrases"],
  "trending_keywords": ["terms currently gaining search interest"],
  "hashtags": ["at most 5 hashtags starting with #"],
  "search_queries": ["at most 3 questions people type into search engines"]
}`, t.Title, t.Category, truncateRunes(draft, keywordDraftRunes))
}

func editPrompt(category string, draft string, research KeywordBundle) string {
	var hints string
	if len(research.Primary) > 0 {
		hints = fmt.Sprintf("\nWeave these keywords in naturally where they fit: %s\n", strings.Join(research.Primary, ", "))
	}
	return fmt.Sprintf(`You are the editor of a technology publication. Edit the draft below for clarity, structure and search visibility without changing its first-person analytical voice.
Category: %s
%s
Return a single JSON object and nothing else, with these fields:
{
  "title": "a specific, compelling headline without clickbait",
  "meta_description": "at most 160 characters",
  "excerpt": "one or two sentences that summarise the argument",
  "keywords": ["up to 5 keywords"],
  "hashtags": ["up to 5 hashtags"],
  "search_queries": ["up to 3 search queries"],
  "content": "the full edited article as an HTML fragment"
}

The "content" value must start with "<" and end with ">", use only <h2>, <p>, <blockquote>, <ul>, <ol> and <li>, and must not contain notes about your edits.

Draft:
%s`, category, hints, truncateRunes(draft, editDraftRunes))
}

func humanizePrompt(content string) string {
	return fmt.Sprintf(`Rewrite the following HTML article so it reads as if a thoughtful human columnist wrote it. Vary sentence length, cut filler and stock phrases, keep every factual claim and the overall structure.

Return only the rewritten HTML fragment. Keep the same tags. Do not wrap it in JSON or code fences and do not add notes about what you changed.

%s`, truncateRunes(content, humanizeInputRunes))
}
