package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"

	"github.com/yungbote/hive-backend/internal/http/middleware"
	"github.com/yungbote/hive-backend/internal/http/response"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/realtime"
	"github.com/yungbote/hive-backend/internal/services"
)

type LiveHandler struct {
	log         *logger.Logger
	authService services.AuthService
	liveService services.LiveService
	upgrader    gws.Upgrader
}

func NewLiveHandler(log *logger.Logger, authService services.AuthService, liveService services.LiveService) *LiveHandler {
	return &LiveHandler{
		log:         log.With("handler", "LiveHandler"),
		authService: authService,
		liveService: liveService,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Extension and app clients have no stable origin to pin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GET /ws/live
//
// Auth happens before the upgrade so a bad token gets a proper HTTP status
// instead of a dropped socket.
func (h *LiveHandler) Live(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	userID, err := h.authService.VerifyToken(token)
	if err != nil {
		response.RespondServiceError(c, "unauthorized", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := h.liveService.Connect(userID)
	h.log.Info("Live client connected", "user_id", userID.String(), "client_id", client.ID.String())

	// First frame is a full snapshot so the client renders immediately
	// instead of waiting for the next broadcast.
	snapshot := h.liveService.Snapshot(c.Request.Context(), userID)
	select {
	case client.Outbound <- realtime.Message{
		Channel: realtime.UserChannel(userID.String()),
		Event:   realtime.EventLiveStats,
		Data:    snapshot,
	}:
	default:
	}

	h.liveService.Hub().Serve(conn, client)
	h.log.Info("Live client disconnected", "user_id", userID.String(), "client_id", client.ID.String())
}
