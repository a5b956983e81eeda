package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hive-backend/internal/http/response"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/services"
)

type ActivityHandler struct {
	log             *logger.Logger
	activityService services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		log:             log.With("handler", "ActivityHandler"),
		activityService: activityService,
	}
}

// POST /api/activity/browser
func (h *ActivityHandler) BrowserEvent(c *gin.Context) {
	var req services.BrowserEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.activityService.HandleBrowserEvent(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, "browser_event_failed", err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/activity/mobile
func (h *ActivityHandler) MobileSync(c *gin.Context) {
	var req services.MobileSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	results, err := h.activityService.HandleMobileSync(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, "mobile_sync_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"synced": len(results), "apps": results})
}
