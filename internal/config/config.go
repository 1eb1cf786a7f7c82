package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	DatabaseURL   string
	SessionSecret string
	GinMode       string
	LogLevel      string
	AdminUserName string
	AdminPassword string
	AdminAPIKey   string
	CORSOrigins   []string
	SiteBaseURL   string
	PostAuthor    string
	TopicsFile    string
	QualityGate   bool
	Scheduler     SchedulerConfig
	LLM           LLMConfig
	MinPublishGap time.Duration
	ReferenceZone *time.Location
}

// LLMConfig 描述两个模型提供方的访问参数。
type LLMConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
	Temperature   float64
	MaxTokens     int
}

// SchedulerConfig 描述定时发布任务。
type SchedulerConfig struct {
	Enabled bool
	Specs   []string
}

const (
	defaultSchedule    = "0 6 * * *;0 18 * * *"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
	devSessionSecret   = "wavesignals-dev-secret"
)

// LoadDotEnv 尝试加载 .env 文件，文件不存在时仅记录日志。
func LoadDotEnv(path string) {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Info("no .env file loaded, using process environment", "path", path)
	}
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	timeout, err := durationEnv("LLM_TIMEOUT", 90*time.Second)
	if err != nil {
		return AppConfig{}, err
	}
	gap, err := durationEnv("MIN_PUBLISH_GAP", 23*time.Hour)
	if err != nil {
		return AppConfig{}, err
	}
	temperature, err := floatEnv("LLM_TEMPERATURE", 0.8)
	if err != nil {
		return AppConfig{}, err
	}
	maxTokens, err := intEnv("LLM_MAX_TOKENS", 4000)
	if err != nil {
		return AppConfig{}, err
	}
	schedulerEnabled, err := boolEnv("SCHEDULER_ENABLED", true)
	if err != nil {
		return AppConfig{}, err
	}
	qualityGate, err := boolEnv("QUALITY_GATE", false)
	if err != nil {
		return AppConfig{}, err
	}

	ginMode := envOrDefault("GIN_MODE", "release")

	tzName := envOrDefault("REFERENCE_TIMEZONE", "UTC")
	zone, err := time.LoadLocation(tzName)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REFERENCE_TIMEZONE %q: %w", tzName, err)
	}

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  envOrDefault("DATABASE_PATH", "wavesignals.db"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SessionSecret: sessionSecret(ginMode),
		GinMode:       ginMode,
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		AdminUserName: envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		AdminAPIKey:   strings.TrimSpace(os.Getenv("ADMIN_KEY")),
		CORSOrigins:   splitList(envOrDefault("CORS_ORIGINS", "*"), ","),
		SiteBaseURL:   strings.TrimRight(envOrDefault("SITE_BASE_URL", "https://wavesignals.dev"), "/"),
		PostAuthor:    envOrDefault("POST_AUTHOR", "WaveSignals AI"),
		TopicsFile:    strings.TrimSpace(os.Getenv("TOPICS_FILE")),
		QualityGate:   qualityGate,
		MinPublishGap: gap,
		ReferenceZone: zone,
		Scheduler: SchedulerConfig{
			Enabled: schedulerEnabled,
			Specs:   splitList(envOrDefault("PUBLISH_SCHEDULE", defaultSchedule), ";"),
		},
		LLM: LLMConfig{
			GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			GeminiModel:   envOrDefault("GEMINI_MODEL", defaultGeminiModel),
			GeminiBaseURL: envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			OpenAIModel:   envOrDefault("OPENAI_MODEL", defaultOpenAIModel),
			OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
			Timeout:       timeout,
			Temperature:   temperature,
			MaxTokens:     maxTokens,
		},
	}, nil
}

// sessionSecret 在 release 模式下不提供默认密钥，未配置时返回空串，会话登录随之关闭。
func sessionSecret(ginMode string) string {
	if secret := strings.TrimSpace(os.Getenv("SESSION_SECRET")); secret != "" {
		return secret
	}
	if ginMode == "release" {
		return ""
	}
	return devSessionSecret
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return value, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
