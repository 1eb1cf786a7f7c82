package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavesignals/internal/config"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const article = "<h2>Signals</h2><p>I keep coming back to the same question about how small teams ship reliable services without drowning in tooling. " +
	"The answer has changed a lot over the last few years, and not always in the direction the vendors promised.</p>"

func setupAppTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:app-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// geminiStub 按调用顺序返回四个阶段的回复。
func geminiStub(t *testing.T, replies []string) *httptest.Server {
	t.Helper()
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if calls >= len(replies) {
			http.Error(w, `{"error":{"message":"unexpected call"}}`, http.StatusInternalServerError)
			return
		}
		text := replies[calls]
		calls++
		body := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig() config.AppConfig {
	return config.AppConfig{
		SessionSecret: "test-secret",
		AdminAPIKey:   "key",
		SiteBaseURL:   "https://example.com",
		PostAuthor:    "WaveSignals AI",
		MinPublishGap: 23 * time.Hour,
		ReferenceZone: time.UTC,
		CORSOrigins:   []string{"*"},
		LLM: config.LLMConfig{
			GeminiModel: "gemini-test",
			OpenAIModel: "gpt-test",
			Timeout:     5 * time.Second,
			Temperature: 0.8,
			MaxTokens:   4000,
		},
	}
}

func TestPublishEndToEnd(t *testing.T) {
	edit, err := json.Marshal(map[string]any{
		"title":            "Small Teams, Reliable Services",
		"meta_description": "How small teams keep services reliable.",
		"excerpt":          "Tooling promised more than it delivered.",
		"keywords":         []string{"reliability"},
		"hashtags":         []string{"SRE"},
		"search_queries":   []string{"how do small teams run services"},
		"content":          article,
	})
	require.NoError(t, err)

	srv := geminiStub(t, []string{
		article,
		`{"primary_keywords":["reliability"],"long_tail_keywords":["small team reliability"],"hashtags":["#DevOps"],"search_queries":["what is sre"]}`,
		string(edit),
		article,
	})

	cfg := baseConfig()
	cfg.LLM.GeminiAPIKey = "test-key"
	cfg.LLM.GeminiBaseURL = srv.URL

	a, err := New(cfg, setupAppTestDB(t), logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, a.Scheduler)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-post", nil)
	req.Header.Set("X-Admin-Key", "key")
	a.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result struct {
		Success bool   `json:"success"`
		ID      uint   `json:"id"`
		Slug    string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "small-teams-reliable-services", result.Slug)

	post, err := a.Posts.Get(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, "WaveSignals AI", post.Author)
	assert.True(t, strings.HasPrefix(post.Content, "<h2>"))
	assert.Equal(t, []string{"reliability", "small team reliability"}, post.Keywords)

	// 23 小时内的第二次发布被限流。
	again := a.Publisher.Publish(context.Background(), false)
	assert.False(t, again.Success)
	require.NotNil(t, again.HoursRemaining)
	assert.InDelta(t, 23.0, *again.HoursRemaining, 0.1)
}

func TestPublishWithoutProvidersFails(t *testing.T) {
	cfg := baseConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Specs = []string{"0 6 * * *"}

	gdb := setupAppTestDB(t)
	a, err := New(cfg, gdb, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, a.Scheduler)

	result := a.Publisher.Publish(context.Background(), false)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "content generation failed")

	var count int64
	require.NoError(t, gdb.Model(&db.Post{}).Count(&count).Error)
	assert.Zero(t, count)

	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bot-status", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ready":false`)
}

func TestNewRejectsMissingTopicsFile(t *testing.T) {
	cfg := baseConfig()
	cfg.TopicsFile = "/nonexistent/topics.yaml"
	_, err := New(cfg, setupAppTestDB(t), logger.Discard())
	assert.Error(t, err)
}
