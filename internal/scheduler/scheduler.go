// Package scheduler 按 cron 表达式定时触发自动发布。
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wavesignals/internal/service"
)

// Publisher 是调度器触发的发布动作。
type Publisher interface {
	Publish(ctx context.Context, override bool) service.PublishResult
}

// Scheduler 包装 cron，每个触发点执行一次不带 override 的发布。
type Scheduler struct {
	mu        sync.Mutex
	cron      *cron.Cron
	specs     []string
	publisher Publisher
	events    *service.EventLog
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	running   bool
}

// New 构造 Scheduler。location 为空时使用 UTC。
func New(specs []string, location *time.Location, publisher Publisher, events *service.EventLog, logger *slog.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(location)),
		specs:     specs,
		publisher: publisher,
		events:    events,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start 注册所有表达式并启动调度。任意表达式非法时不会启动。
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if len(s.specs) == 0 {
		return errors.New("no publish schedule configured")
	}

	for _, spec := range s.specs {
		if _, err := s.cron.AddFunc(spec, recoveryWrapper(s.logger, s.runPublish)); err != nil {
			return fmt.Errorf("add publish schedule %q: %w", spec, err)
		}
		s.logger.Info("scheduled automatic publishing", "spec", spec)
	}
	s.cron.Start()
	s.running = true
	return nil
}

// Stop 停止调度，取消正在进行的发布，并等待任务退出或 ctx 结束。
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// Running 报告调度器是否已启动。
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun 返回最近的下一次触发时间，未启动时返回 nil。
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	var next time.Time
	for _, entry := range s.cron.Entries() {
		if entry.Next.IsZero() {
			continue
		}
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *Scheduler) runPublish() {
	s.logger.Info("scheduled publish triggered")
	if s.events != nil {
		s.events.Record(service.EventPublishStarted, map[string]any{"trigger": "scheduler"})
	}

	result := s.publisher.Publish(s.ctx, false)
	if s.events != nil {
		s.events.RecordResult("scheduler", result)
	}

	switch {
	case result.Success:
		s.logger.Info("scheduled publish succeeded", "post_id", result.ID, "title", result.Title)
	case result.HoursRemaining != nil:
		s.logger.Info("scheduled publish skipped", "hours_remaining", *result.HoursRemaining)
	default:
		s.logger.Error("scheduled publish failed", "error", result.Error)
	}
}

func recoveryWrapper(logger *slog.Logger, job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("scheduled job panicked", "panic", r, "stack", string(debug.Stack()))
			}
		}()
		job()
	}
}
