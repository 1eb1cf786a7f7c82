package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wavesignals/internal/db"
	"gorm.io/gorm"
)

// ErrInvalidEmail 表示订阅邮箱格式不合法。
var ErrInvalidEmail = errors.New("invalid email address")

// SubscriberService 管理邮件订阅。
type SubscriberService struct {
	db *gorm.DB
}

// NewSubscriberService 构造 SubscriberService。
func NewSubscriberService(gdb *gorm.DB) *SubscriberService {
	return &SubscriberService{db: gdb}
}

// Subscribe 以小写邮箱登记订阅。已存在时返回现有记录且 created 为 false。
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*db.Subscriber, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 || strings.ContainsAny(normalized, " \t\r\n") {
		return nil, false, ErrInvalidEmail
	}

	var existing db.Subscriber
	err := s.db.WithContext(ctx).Where("email = ?", normalized).Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup subscriber: %w", err)
	}

	sub := db.Subscriber{Email: normalized, Status: db.SubscriberStatusActive}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, false, fmt.Errorf("create subscriber: %w", err)
	}
	return &sub, true, nil
}

// List 返回全部订阅者，最新的在前。
func (s *SubscriberService) List(ctx context.Context) ([]db.Subscriber, error) {
	var subs []db.Subscriber
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}
