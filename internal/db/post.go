package db

import "time"

// Post 定义了已发布文章模型。生成流程只插入，不更新。
type Post struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Slug            string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title           string    `gorm:"size:500;not null" json:"title"`
	Excerpt         string    `gorm:"type:text" json:"excerpt"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Tags            string    `gorm:"size:255" json:"tags"`
	Image           string    `gorm:"size:1024" json:"image"`
	MetaDescription string    `gorm:"size:500" json:"meta_description"`
	Keywords        []string  `gorm:"type:text;serializer:json" json:"keywords"`
	Hashtags        []string  `gorm:"type:text;serializer:json" json:"hashtags"`
	SearchQueries   []string  `gorm:"type:text;serializer:json" json:"search_queries"`
	Published       bool      `gorm:"not null" json:"published"`
	Author          string    `gorm:"size:255" json:"author"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
