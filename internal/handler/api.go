package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/wavesignals/internal/llm"
	"github.com/wavesignals/internal/service"
	"gorm.io/gorm"
)

// Publisher 是手动触发接口使用的发布动作。
type Publisher interface {
	Publish(ctx context.Context, override bool) service.PublishResult
}

// SchedulerStatus 暴露定时任务状态给健康检查。
type SchedulerStatus interface {
	Running() bool
	NextRun() *time.Time
}

// Options 汇总构造 API 所需的依赖。
type Options struct {
	DB          *gorm.DB
	Posts       *service.PostService
	Settings    *service.SystemSettingService
	Subscribers *service.SubscriberService
	Sitemap     *service.SitemapService
	Events      *service.EventLog
	Publisher   Publisher
	Providers   []llm.Provider
	Scheduler   SchedulerStatus
	AdminKey    string
	Logger      *slog.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	posts       *service.PostService
	settings    *service.SystemSettingService
	subscribers *service.SubscriberService
	sitemap     *service.SitemapService
	events      *service.EventLog
	publisher   Publisher
	providers   []llm.Provider
	scheduler   SchedulerStatus
	adminKey    string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAPI constructs a handler set with shared services. Services left nil are
// built from opts.DB.
func NewAPI(opts Options) *API {
	a := &API{
		db:          opts.DB,
		posts:       opts.Posts,
		settings:    opts.Settings,
		subscribers: opts.Subscribers,
		sitemap:     opts.Sitemap,
		events:      opts.Events,
		publisher:   opts.Publisher,
		providers:   opts.Providers,
		scheduler:   opts.Scheduler,
		adminKey:    opts.AdminKey,
		logger:      opts.Logger,
		now:         time.Now,
	}
	if a.posts == nil {
		a.posts = service.NewPostService(opts.DB)
	}
	if a.settings == nil {
		a.settings = service.NewSystemSettingService(opts.DB)
	}
	if a.subscribers == nil {
		a.subscribers = service.NewSubscriberService(opts.DB)
	}
	if a.events == nil {
		a.events = service.NewEventLog(0)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
