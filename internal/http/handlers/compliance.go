package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assignment-backend/internal/http/response"
	"github.com/yungbote/assignment-backend/internal/services"
)

type ComplianceHandler struct {
	compliance services.ComplianceService
}

func NewComplianceHandler(compliance services.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance}
}

// GET /api/compliance
func (h *ComplianceHandler) Mine(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	snap, err := h.compliance.Snapshot(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// GET /api/compliance/history?limit=
func (h *ComplianceHandler) History(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.compliance.History(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"records": records})
}

// GET /api/admin/users/:userId/compliance
func (h *ComplianceHandler) ForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	snap, err := h.compliance.ForUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, snap)
}
