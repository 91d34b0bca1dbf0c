package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/http/response"
	"github.com/yungbote/assignment-backend/internal/platform/ctxutil"
)

// principal returns the authenticated user, writing a 401 when there is none.
func principal(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNotAuthenticated)
		return nil, false
	}
	return rd, true
}

// uuidParam parses a path parameter, writing a 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
