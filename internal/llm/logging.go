package llm

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

const maxLogSnippetRunes = 1024

// logExchange 用于输出模型请求与响应的关键信息，方便排查模型行为。
func logExchange(logger *slog.Logger, provider, phase, content string) {
	if logger == nil {
		logger = slog.Default()
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		logger.Debug("llm exchange", "provider", provider, "phase", phase, "content", "<empty>")
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxLogSnippetRunes {
		snippet = truncateRunes(trimmed, maxLogSnippetRunes) + "…(truncated)"
	}
	logger.Debug("llm exchange", "provider", provider, "phase", phase, "runes", runeCount, "content", snippet)
}
