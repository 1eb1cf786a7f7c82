package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/app"
	"github.com/wavesignals/internal/config"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/logger"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	os.Exit(run(context.Background()))
}

// run 启动服务直到 ctx 结束或收到退出信号，返回进程退出码。
func run(parent context.Context) int {
	config.LoadDotEnv(os.Getenv("ENV_FILE"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log := logger.Setup(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(db.Options{
		DatabaseURL:  cfg.DatabaseURL,
		DatabasePath: cfg.DatabasePath,
		Logger:       gormlogger.Default.LogMode(gormlogger.Warn),
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

	if err := db.EnsureUser(gdb, cfg.AdminUserName, cfg.AdminPassword); err != nil {
		log.Error("failed to ensure admin user", "error", err)
		return 1
	}

	application, err := app.New(cfg, gdb, log)
	if err != nil {
		log.Error("failed to assemble application", "error", err)
		return 1
	}

	shutdownTimeout := 30 * time.Second
	if application.Scheduler != nil {
		if err := application.Scheduler.Start(); err != nil {
			log.Error("failed to start scheduler", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			application.Scheduler.Stop(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			log.Error("failed to run server", "error", err)
			stop()
		}
		serveErr <- err
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	code := 0
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
		code = 1
	}
	if err := <-serveErr; err != nil {
		code = 1
	}
	return code
}
