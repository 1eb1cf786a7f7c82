package service

import (
	"context"
	"testing"

	"github.com/wavesignals/internal/db"
)

func TestSiteConfigDefaults(t *testing.T) {
	svc := NewSystemSettingService(setupServiceTestDB(t))

	config, err := svc.GetSiteConfig(context.Background())
	if err != nil {
		t.Fatalf("get site config: %v", err)
	}
	if config["site_name"] != "WaveSignals" || config["ads_enabled"] != false {
		t.Fatalf("unexpected defaults %v", config)
	}

	config["site_name"] = "mutated"
	again, err := svc.GetSiteConfig(context.Background())
	if err != nil {
		t.Fatalf("get site config: %v", err)
	}
	if again["site_name"] != "WaveSignals" {
		t.Fatalf("defaults must not be shared between calls, got %v", again["site_name"])
	}
}

func TestSiteConfigMergesUpdates(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSystemSettingService(gdb)
	ctx := context.Background()

	if _, err := svc.UpdateSiteConfig(ctx, map[string]any{"ads_enabled": true, "adsense_id": "ca-pub-1"}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	merged, err := svc.UpdateSiteConfig(ctx, map[string]any{"testMode": true})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	if merged["ads_enabled"] != true || merged["adsense_id"] != "ca-pub-1" || merged["testMode"] != true {
		t.Fatalf("expected shallow merge, got %v", merged)
	}

	loaded, err := svc.GetSiteConfig(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded["adsense_id"] != "ca-pub-1" || loaded["site_name"] != "WaveSignals" {
		t.Fatalf("unexpected persisted config %v", loaded)
	}

	var count int64
	if err := gdb.Model(&db.SystemSetting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single upserted row, got %d", count)
	}
}

func TestSiteConfigRejectsCorruptValue(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := gdb.Create(&db.SystemSetting{Key: db.SettingKeySiteConfig, Value: "not json"}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	if _, err := NewSystemSettingService(gdb).GetSiteConfig(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
