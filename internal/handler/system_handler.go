package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/service"
)

// Index 返回服务说明。
func (a *API) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "WaveSignals",
		"status":  "running",
		"endpoints": []string{
			"/health", "/api/posts", "/api/settings", "/api/bot-status", "/sitemap.xml",
		},
	})
}

// HealthCheck 报告数据库、文章统计、调度器与模型提供方状态。
func (a *API) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	now := a.now().UTC()

	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	stats, err := a.posts.Stats(ctx, now)
	if err != nil {
		a.logger.Error("load post stats failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "failed to query posts",
		})
		return
	}

	var lastPost gin.H
	if stats.Latest != nil {
		lastPost = gin.H{
			"id":        stats.Latest.ID,
			"title":     stats.Latest.Title,
			"slug":      stats.Latest.Slug,
			"createdAt": stats.Latest.CreatedAt,
		}
	}

	scheduler := gin.H{"running": false}
	if a.scheduler != nil {
		scheduler["running"] = a.scheduler.Running()
		if next := a.scheduler.NextRun(); next != nil {
			scheduler["nextRun"] = next.UTC()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  "up",
		"timestamp": now,
		"posts": gin.H{
			"total":   stats.Total,
			"last24h": stats.Last24,
		},
		"lastPost":  lastPost,
		"scheduler": scheduler,
		"providers": a.providerConfig(),
	})
}

// BotStatus 报告模型提供方是否已配置。
func (a *API) BotStatus(c *gin.Context) {
	providers := a.providerConfig()
	ready := false
	for _, configured := range providers {
		if configured {
			ready = true
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":     ready,
		"providers": providers,
	})
}

func (a *API) providerConfig() map[string]bool {
	out := make(map[string]bool, len(a.providers))
	for _, p := range a.providers {
		out[p.Name()] = p.Configured()
	}
	return out
}

// TestAI 依次探测每个模型提供方。
func (a *API) TestAI(c *gin.Context) {
	statuses := service.DiagnoseProviders(c.Request.Context(), a.providers)
	ok := false
	for _, status := range statuses {
		if status.OK {
			ok = true
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok, "providers": statuses})
}

// ListEvents 返回最近的触发事件。
func (a *API) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": a.events.Recent(queryInt(c, "limit", 50))})
}

// Sitemap 输出已发布文章的站点地图。
func (a *API) Sitemap(c *gin.Context) {
	if a.sitemap == nil {
		respondError(c, http.StatusNotFound, "sitemap disabled")
		return
	}
	body, err := a.sitemap.Build(c.Request.Context())
	if err != nil {
		a.logger.Error("build sitemap failed", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to build sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
