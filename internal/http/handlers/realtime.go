package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/assignment-backend/internal/platform/logger"
	"github.com/yungbote/assignment-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// SSEStream subscribes the connection to the caller's user channel until the
// client disconnects.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	client := h.Hub.NewSSEClient(rd.UserID)
	h.Hub.AddChannel(client, rd.UserID.String())
	h.Log.Debug("SSE stream open", "user_id", rd.UserID, "client_id", client.ID)

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	h.Log.Debug("SSE stream closed", "user_id", rd.UserID, "client_id", client.ID)
}
