package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述数据库连接参数。DatabaseURL 为 postgres 连接串时优先使用 postgres。
type Options struct {
	DatabaseURL  string
	DatabasePath string
	Logger       logger.Interface
}

// Init 初始化数据库连接并执行自动迁移。
// 未配置 DatabaseURL 时使用 sqlite，路径为空时将回退到默认值 wavesignals.db。
func Init(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }}
	if opts.Logger != nil {
		cfg.Logger = opts.Logger
	}

	var dialector gorm.Dialector
	if url := strings.TrimSpace(opts.DatabaseURL); isPostgresURL(url) {
		dialector = postgres.Open(url)
	} else {
		path := strings.TrimSpace(opts.DatabasePath)
		if path == "" {
			path = "wavesignals.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	DB = gdb
	return gdb, nil
}

// Migrate 自动迁移模式，为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Post{},
		&SystemSetting{},
		&Subscriber{},
	)
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
