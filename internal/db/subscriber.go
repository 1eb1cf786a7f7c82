package db

import "time"

// SubscriberStatusActive 是新订阅者的默认状态。
const SubscriberStatusActive = "active"

// Subscriber 记录邮件订阅者。
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
