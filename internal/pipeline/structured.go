package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var openingFencePattern = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")

// MalformedError 表示模型响应中找不到可解析的 JSON 对象。
type MalformedError struct {
	Snippet string
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("unparseable structured response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

var errNoObject = errors.New("no JSON object found")

// StripCodeFences 只去掉包裹整段回复的一层代码围栏，正文内部的围栏原样保留。
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	loc := openingFencePattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	text = strings.TrimSpace(text[loc[1]:])
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

// ParseStructured 从模型回复中提取 JSON 对象。
// 先去掉外层代码围栏，再从第一个 '{' 开始，依次尝试靠后的 '}' 作为结尾，
// 直到得到一个合法的对象。字符串中未转义的换行会被修复后再尝试一次。
func ParseStructured(raw string) (map[string]any, error) {
	cleaned := StripCodeFences(raw)
	start := strings.Index(cleaned, "{")
	if start < 0 {
		return nil, &MalformedError{Snippet: truncateRunes(cleaned, 200), Err: errNoObject}
	}

	var lastErr error = errNoObject
	end := len(cleaned)
	for end > start {
		idx := strings.LastIndex(cleaned[start:end], "}")
		if idx < 0 {
			break
		}
		candidate := cleaned[start : start+idx+1]
		obj, err := decodeObject(candidate)
		if err == nil {
			return obj, nil
		}
		if repaired := escapeControlChars(candidate); repaired != candidate {
			if obj, rerr := decodeObject(repaired); rerr == nil {
				return obj, nil
			}
		}
		lastErr = err
		end = start + idx
	}

	return nil, &MalformedError{Snippet: truncateRunes(cleaned, 200), Err: lastErr}
}

func decodeObject(candidate string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNoObject
	}
	return obj, nil
}

// escapeControlChars 转义 JSON 字符串字面量内部的原始换行与制表符。
func escapeControlChars(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	inString := false
	escaped := false
	for _, r := range input {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stringField 返回字段值与它是否为字符串。
func stringField(obj map[string]any, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}

// stringListField 接受字符串数组或逗号分隔的字符串，忽略其他类型。
func stringListField(obj map[string]any, key string) []string {
	switch value := obj[key].(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		return out
	case string:
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}
