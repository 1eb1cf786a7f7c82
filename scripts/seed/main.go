// Command seed 写入示例文章与管理员账号，便于本地调试限流与接口。
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wavesignals/internal/config"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/logger"
	"github.com/wavesignals/internal/service"
	"github.com/wavesignals/internal/topic"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	count := flag.Int("posts", 5, "number of sample posts to create")
	hoursAgo := flag.Float64("latest-hours-ago", 30, "age of the newest sample post in hours")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.LogLevel)

	gdb, err := db.Init(db.Options{
		DatabaseURL:  cfg.DatabaseURL,
		DatabasePath: cfg.DatabasePath,
		Logger:       gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("数据库初始化失败", "error", err)
		os.Exit(1)
	}

	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	if err := db.EnsureUser(gdb, cfg.AdminUserName, password); err != nil {
		log.Error("创建管理员失败", "error", err)
		os.Exit(1)
	}

	latest := time.Now().UTC().Add(-time.Duration(*hoursAgo * float64(time.Hour)))
	created, err := seedPosts(context.Background(), gdb, topic.Default(), *count, latest)
	if err != nil {
		log.Error("生成示例文章失败", "error", err)
		os.Exit(1)
	}

	fmt.Printf("created %d sample posts, admin user %q\n", created, cfg.AdminUserName)
}

// seedPosts 为目录中的前 n 个主题各写入一篇文章，最新一篇的时间为 latest，其余每篇间隔一天。
func seedPosts(ctx context.Context, gdb *gorm.DB, catalog *topic.Catalog, n int, latest time.Time) (int, error) {
	posts := service.NewPostService(gdb)
	created := 0

	for _, category := range catalog.Categories() {
		for _, title := range category.Topics {
			if created >= n {
				return created, nil
			}
			post, err := posts.Create(ctx, service.PostInput{
				Title:   title,
				Content: fmt.Sprintf("<h2>%s</h2><p>Sample article in %s.</p>", title, category.Name),
				Excerpt: "Sample article.",
				Tags:    category.Name,
				Author:  "WaveSignals AI",
			})
			if err != nil {
				return created, err
			}

			at := latest.Add(-time.Duration(created) * 24 * time.Hour)
			if err := gdb.WithContext(ctx).Model(&db.Post{}).Where("id = ?", post.ID).
				UpdateColumn("created_at", at).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
