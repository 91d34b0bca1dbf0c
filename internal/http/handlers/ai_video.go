package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/http/response"
	"github.com/yungbote/assignment-backend/internal/services"
)

type AiVideoHandler struct {
	videos services.AiVideoService
}

func NewAiVideoHandler(videos services.AiVideoService) *AiVideoHandler {
	return &AiVideoHandler{videos: videos}
}

// GET /api/ai-videos
func (h *AiVideoHandler) Mine(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.videos.UserView(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

type markDownloadedRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

// POST /api/ai-videos/mark-downloaded
func (h *AiVideoHandler) MarkDownloaded(c *gin.Context) {
	rd, ok := principal(c)
	if !ok {
		return
	}
	var req markDownloadedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(c, "videoId is required")
		return
	}
	videoID, err := uuid.Parse(req.VideoID)
	if err != nil {
		response.RespondBadRequest(c, "invalid videoId")
		return
	}
	video, err := h.videos.MarkDownloaded(c.Request.Context(), rd.UserID, videoID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, video)
}

// GET /api/admin/ai-videos
func (h *AiVideoHandler) List(c *gin.Context) {
	out, err := h.videos.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": out})
}

// POST /api/admin/ai-videos
func (h *AiVideoHandler) Create(c *gin.Context) {
	var req services.VideoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(c, "invalid request body")
		return
	}
	video, err := h.videos.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, video)
}

// DELETE /api/admin/ai-videos/:videoId
func (h *AiVideoHandler) Delete(c *gin.Context) {
	videoID, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), videoID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"_id": videoID})
}

// POST /api/admin/ai-videos/allocate
func (h *AiVideoHandler) Allocate(c *gin.Context) {
	n, err := h.videos.Allocate(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"allocationCount": n})
}
