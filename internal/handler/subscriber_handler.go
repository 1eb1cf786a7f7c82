package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/service"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe 登记订阅邮箱，重复订阅返回 200。
func (a *API) Subscribe(c *gin.Context) {
	var payload subscribeRequest
	if !bindJSON(c, &payload, "invalid subscribe payload") {
		return
	}

	sub, created, err := a.subscribers.Subscribe(c.Request.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"subscribed": true, "created": created, "email": sub.Email})
}

// ListSubscribers 返回全部订阅者。
func (a *API) ListSubscribers(c *gin.Context) {
	subs, err := a.subscribers.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load subscribers")
		return
	}
	if subs == nil {
		subs = []db.Subscriber{}
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs, "total": len(subs)})
}
