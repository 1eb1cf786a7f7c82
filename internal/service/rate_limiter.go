package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RateDecision 是一次限流检查的结果。HoursRemaining 仅在被拒绝时存在。
type RateDecision struct {
	Allowed        bool
	Override       bool
	LastPublished  *time.Time
	HoursRemaining *float64
}

// RateLimiter 保证两次自动发布之间至少间隔 minGap。
// 检查只是建议性的，调用方需要自行串行化“检查后写入”。
type RateLimiter struct {
	posts  *PostService
	minGap time.Duration
	zone   *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter 构造 RateLimiter。存储中的时间戳都是 UTC 时刻，zone 只决定
// LastPublished 的展示时区，为空时使用 UTC。
func NewRateLimiter(posts *PostService, minGap time.Duration, zone *time.Location, logger *slog.Logger) *RateLimiter {
	if minGap <= 0 {
		minGap = 23 * time.Hour
	}
	if zone == nil {
		zone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{posts: posts, minGap: minGap, zone: zone, now: time.Now, logger: logger}
}

// SetClock 替换时间来源，主要面向测试场景。
func (r *RateLimiter) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	r.now = now
}

// MinGap 返回两次发布之间的最小间隔。
func (r *RateLimiter) MinGap() time.Duration {
	return r.minGap
}

// Check 判断现在是否允许发布。override 为 true 时直接放行并记录日志。
func (r *RateLimiter) Check(ctx context.Context, override bool) (RateDecision, error) {
	if override {
		r.logger.Warn("rate limit bypassed by override")
		return RateDecision{Allowed: true, Override: true}, nil
	}

	latest, err := r.posts.Latest(ctx)
	if err != nil {
		return RateDecision{}, fmt.Errorf("read latest post: %w", err)
	}
	if latest == nil {
		return RateDecision{Allowed: true}, nil
	}

	last := latest.CreatedAt.In(r.zone)
	elapsed := r.now().Sub(last)
	if elapsed >= r.minGap {
		return RateDecision{Allowed: true, LastPublished: &last}, nil
	}

	remaining := r.minGap.Hours() - elapsed.Hours()
	r.logger.Info("rate limit active", "last_published", last, "hours_remaining", remaining)
	return RateDecision{LastPublished: &last, HoursRemaining: &remaining}, nil
}
