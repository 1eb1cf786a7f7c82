package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/service"
)

type generateRequest struct {
	OverrideRateLimit bool `json:"override_rate_limit"`
}

// GeneratePost 手动触发一次发布。override 可来自 JSON 或查询参数。
func (a *API) GeneratePost(c *gin.Context) {
	if a.publisher == nil {
		respondError(c, http.StatusServiceUnavailable, "publisher not configured")
		return
	}

	var payload generateRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &payload, "invalid generate payload") {
			return
		}
	}
	override := payload.OverrideRateLimit || queryBool(c, "override")

	a.events.Record(service.EventPublishStarted, map[string]any{"trigger": "api", "override": override})
	// 客户端断开后发布仍需走完。
	ctx := context.WithoutCancel(c.Request.Context())
	result := a.publisher.Publish(ctx, override)
	a.events.RecordResult("api", result)

	status := http.StatusOK
	switch {
	case result.Success:
	case result.HoursRemaining != nil:
		status = http.StatusTooManyRequests
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}
