package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/wavesignals/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultSiteConfig 是站点配置文档的初始值。
var defaultSiteConfig = map[string]any{
	"site_name":   "WaveSignals",
	"ads_enabled": false,
	"testMode":    false,
}

// SystemSettingService 提供站点配置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

// GetSiteConfig 读取站点配置，未保存过时返回默认值。
func (s *SystemSettingService) GetSiteConfig(ctx context.Context) (map[string]any, error) {
	return loadSiteConfig(s.db.WithContext(ctx))
}

// UpdateSiteConfig 将 patch 浅合并到现有配置并保存，返回合并后的结果。
func (s *SystemSettingService) UpdateSiteConfig(ctx context.Context, patch map[string]any) (map[string]any, error) {
	var merged map[string]any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSiteConfig(tx)
		if err != nil {
			return err
		}
		maps.Copy(current, patch)

		raw, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode site config: %w", err)
		}
		if err := upsertSetting(tx, db.SettingKeySiteConfig, string(raw)); err != nil {
			return err
		}
		merged = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update site config: %w", err)
	}
	return merged, nil
}

func loadSiteConfig(tx *gorm.DB) (map[string]any, error) {
	config := maps.Clone(defaultSiteConfig)

	var record db.SystemSetting
	err := tx.Where("key = ?", db.SettingKeySiteConfig).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}

	var stored map[string]any
	if err := json.Unmarshal([]byte(record.Value), &stored); err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}
	maps.Copy(config, stored)
	return config, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
