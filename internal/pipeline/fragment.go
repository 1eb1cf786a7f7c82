package pipeline

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// closingTags 是截断正文时允许作为结尾的闭合标签。
var closingTags = []string{"</p>", "</blockquote>", "</h2>", "</ul>", "</ol>", "</li>"}

// leakageMarkers 出现在正文中说明模型把说明文字或 JSON 结构混进了文章。
var leakageMarkers = append([]string{
	"Here is",
	"Here's",
	"I made",
	"following changes",
}, structuralMarkers...)

// structuralMarkers 是围栏与 JSON 结构残留，润色后的正文只检查这一类。
var structuralMarkers = []string{
	"```",
	`{"`,
	`"}`,
	`"content":`,
	`"title":`,
}

var textPolicy = bluemonday.StrictPolicy()

// ValidateHTMLFragment 判断内容是否以 '<' 开头并以 '>' 结尾。
func ValidateHTMLFragment(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed != "" && strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">")
}

// TruncateToLastClosingTag 截断到最后一个白名单闭合标签之后。
// 找不到任何闭合标签时返回 false。
func TruncateToLastClosingTag(content string) (string, bool) {
	cut := -1
	for _, tag := range closingTags {
		if idx := strings.LastIndex(content, tag); idx >= 0 && idx+len(tag) > cut {
			cut = idx + len(tag)
		}
	}
	if cut < 0 {
		return "", false
	}
	return strings.TrimSpace(content[:cut]), true
}

// FindLeakageMarker 返回正文中出现的第一个残留标记。
func FindLeakageMarker(content string) (string, bool) {
	return findMarker(content, leakageMarkers)
}

// FindStructuralMarker 只查找围栏与 JSON 结构残留。
func FindStructuralMarker(content string) (string, bool) {
	return findMarker(content, structuralMarkers)
}

func findMarker(content string, markers []string) (string, bool) {
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return marker, true
		}
	}
	return "", false
}

// PlainText 去掉标签并折叠空白，用于摘要与字数统计。
func PlainText(fragment string) string {
	stripped := html.UnescapeString(textPolicy.Sanitize(strings.ReplaceAll(fragment, ">", "> ")))
	return strings.Join(strings.Fields(stripped), " ")
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(input) <= limit {
		return input
	}
	return string([]rune(input)[:limit])
}

// summarize 截取纯文本的前 limit 个字符，尽量在单词边界断开。
func summarize(fragment string, limit int) string {
	text := PlainText(fragment)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := truncateRunes(text, limit-1)
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
