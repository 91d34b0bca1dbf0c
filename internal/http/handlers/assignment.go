package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/assignment-backend/internal/http/response"
	"github.com/yungbote/assignment-backend/internal/services"
)

type AssignmentHandler struct {
	assignments services.AssignmentService
}

func NewAssignmentHandler(assignments services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// GET /api/assignments
func (h *AssignmentHandler) Today(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.assignments.Today(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/assignments/summary
func (h *AssignmentHandler) Summary(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.assignments.Summary(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type completeTaskRequest struct {
	Link        string `json:"link" binding:"required"`
	IsCarryOver bool   `json:"isCarryOver"`
}

// POST /api/assignments/complete
//
// The link must belong to the target day's batch; any other link is a 400.
// Completing an already recorded link returns 200 with a null reward.
func (h *AssignmentHandler) Complete(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(c, "link is required")
		return
	}
	res, err := h.assignments.CompleteTask(c.Request.Context(), rd.UserID, req.Link, req.IsCarryOver)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
