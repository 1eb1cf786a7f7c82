// Command publish 执行一次发布并以 JSON 输出结果，适合由外部 cron 调用。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wavesignals/internal/app"
	"github.com/wavesignals/internal/config"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/logger"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run 返回进程退出码：0 表示发布成功，1 表示失败，2 表示参数错误。
func run(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("publish", flag.ContinueOnError)
	override := flags.Bool("override", false, "bypass the minimum gap between posts")
	envFile := flags.String("env", "", "path to a .env file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	config.LoadDotEnv(*envFile)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg.Scheduler.Enabled = false

	log := logger.Setup(cfg.LogLevel)

	gdb, err := db.Init(db.Options{
		DatabaseURL:  cfg.DatabaseURL,
		DatabasePath: cfg.DatabasePath,
		Logger:       gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		return 1
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	application, err := app.New(cfg, gdb, log)
	if err != nil {
		log.Error("failed to assemble application", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := application.Publisher.Publish(ctx, *override)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("failed to encode result", "error", err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}
