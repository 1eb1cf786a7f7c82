// Package logger 负责构建全局的结构化日志实例。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel 将配置中的日志级别字符串转换为 slog.Level，未知值回退为 info。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New 创建写入 w 的文本日志，w 为空时写入 stderr。
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

// Setup 创建日志实例并设置为 slog 的默认 logger。
func Setup(level string) *slog.Logger {
	l := New(level, os.Stderr)
	slog.SetDefault(l)
	return l
}

// Discard 返回丢弃所有输出的 logger，供测试与未注入依赖的组件使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
