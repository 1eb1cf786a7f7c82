package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSettings 返回站点配置文档。
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.GetSiteConfig(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings 将请求体浅合并进站点配置。
func (a *API) UpdateSettings(c *gin.Context) {
	var patch map[string]any
	if !bindJSON(c, &patch, "settings must be a JSON object") {
		return
	}

	settings, err := a.settings.UpdateSiteConfig(c.Request.Context(), patch)
	if err != nil {
		a.logger.Error("update settings failed", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to save settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
