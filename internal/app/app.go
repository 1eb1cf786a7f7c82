// Package app 将配置、存储、模型客户端与 HTTP 层装配成可运行的服务。
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/config"
	"github.com/wavesignals/internal/handler"
	"github.com/wavesignals/internal/llm"
	"github.com/wavesignals/internal/pipeline"
	"github.com/wavesignals/internal/router"
	"github.com/wavesignals/internal/scheduler"
	"github.com/wavesignals/internal/service"
	"github.com/wavesignals/internal/topic"
	"gorm.io/gorm"
)

// App 持有装配完成的组件。
type App struct {
	Config    config.AppConfig
	DB        *gorm.DB
	Logger    *slog.Logger
	Providers []llm.Provider
	Posts     *service.PostService
	Events    *service.EventLog
	Publisher *service.Publisher
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine
}

// New 根据配置装配服务。Scheduler 仅在启用时创建，由调用方负责启动。
func New(cfg config.AppConfig, gdb *gorm.DB, logger *slog.Logger) (*App, error) {
	if gdb == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := loadCatalog(cfg.TopicsFile)
	if err != nil {
		return nil, err
	}

	providers := Providers(cfg.LLM, logger)
	generator := pipeline.New(llm.NewFallbackClient(logger, providers...), logger)

	posts := service.NewPostService(gdb)
	limiter := service.NewRateLimiter(posts, cfg.MinPublishGap, cfg.ReferenceZone, logger)

	var gate *service.QualityGate
	if cfg.QualityGate {
		gate = service.NewQualityGate(posts)
	}
	publisher := service.NewPublisher(limiter, catalog, generator, posts, gate, cfg.PostAuthor, logger)
	events := service.NewEventLog(0)

	a := &App{
		Config:    cfg,
		DB:        gdb,
		Logger:    logger,
		Providers: providers,
		Posts:     posts,
		Events:    events,
		Publisher: publisher,
	}

	opts := handler.Options{
		DB:          gdb,
		Posts:       posts,
		Settings:    service.NewSystemSettingService(gdb),
		Subscribers: service.NewSubscriberService(gdb),
		Sitemap:     service.NewSitemapService(posts, cfg.SiteBaseURL),
		Events:      events,
		Publisher:   publisher,
		Providers:   providers,
		AdminKey:    cfg.AdminAPIKey,
		Logger:      logger,
	}
	if cfg.Scheduler.Enabled {
		a.Scheduler = scheduler.New(cfg.Scheduler.Specs, time.UTC, publisher, events, logger)
		opts.Scheduler = a.Scheduler
	}

	a.Router = router.SetupRouter(handler.NewAPI(opts), router.Options{
		SessionSecret: cfg.SessionSecret,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	})

	logger.Info("application assembled",
		"topics", catalog.Size(),
		"scheduler", cfg.Scheduler.Enabled,
		"quality_gate", cfg.QualityGate,
		"min_publish_gap", cfg.MinPublishGap,
	)
	return a, nil
}

// Providers 按优先级构造模型提供方：Gemini 优先，OpenAI 作为回退。
func Providers(cfg config.LLMConfig, logger *slog.Logger) []llm.Provider {
	gemini := llm.NewGeminiClient(llm.GeminiOptions{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		BaseURL:     cfg.GeminiBaseURL,
		Timeout:     cfg.Timeout,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)
	openAI := llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Timeout:     cfg.Timeout,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)
	return []llm.Provider{gemini, openAI}
}

func loadCatalog(path string) (*topic.Catalog, error) {
	if path == "" {
		return topic.Default(), nil
	}
	catalog, err := topic.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load topics file: %w", err)
	}
	return catalog, nil
}
