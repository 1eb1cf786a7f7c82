package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/topic"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedPostsSpacesTimestamps(t *testing.T) {
	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	latest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created, err := seedPosts(context.Background(), gdb, topic.Default(), 3, latest)
	if err != nil {
		t.Fatalf("seed posts: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 posts, got %d", created)
	}

	var posts []db.Post
	if err := gdb.Order("created_at desc").Find(&posts).Error; err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(posts))
	}
	if !posts[0].CreatedAt.Equal(latest) {
		t.Fatalf("expected newest post at %v, got %v", latest, posts[0].CreatedAt)
	}
	if gap := posts[0].CreatedAt.Sub(posts[1].CreatedAt); gap != 24*time.Hour {
		t.Fatalf("expected one day between posts, got %v", gap)
	}
}
