package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event 记录一次触发相关的事件，只保存在内存中。
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// 事件类型。
const (
	EventPublishStarted   = "publish_started"
	EventPublishSucceeded = "publish_succeeded"
	EventPublishFailed    = "publish_failed"
	EventPublishSkipped   = "publish_skipped"
)

// EventLog 是固定容量的事件环形缓冲区。
type EventLog struct {
	mu     sync.Mutex
	events []Event
	limit  int
	now    func() time.Time
}

// NewEventLog 构造 EventLog，limit <= 0 时使用 100。
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = 100
	}
	return &EventLog{limit: limit, now: time.Now}
}

// Record 追加一条事件，超出容量时丢弃最旧的事件。
func (l *EventLog) Record(eventType string, data map[string]any) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := Event{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		Type:      eventType,
		Data:      data,
	}
	l.events = append(l.events, event)
	if overflow := len(l.events) - l.limit; overflow > 0 {
		l.events = append([]Event(nil), l.events[overflow:]...)
	}
	return event
}

// RecordResult 根据发布结果记录成功、跳过或失败事件。
func (l *EventLog) RecordResult(trigger string, result PublishResult) Event {
	data := map[string]any{"trigger": trigger, "runId": result.RunID}
	switch {
	case result.Success:
		data["id"] = result.ID
		data["title"] = result.Title
		data["slug"] = result.Slug
		return l.Record(EventPublishSucceeded, data)
	case result.HoursRemaining != nil:
		data["hoursRemaining"] = *result.HoursRemaining
		return l.Record(EventPublishSkipped, data)
	default:
		data["error"] = result.Error
		return l.Record(EventPublishFailed, data)
	}
}

// Recent 返回最近的 n 条事件，最新的在前；n <= 0 返回全部。
func (l *EventLog) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, 0, n)
	for i := len(l.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.events[i])
	}
	return out
}
