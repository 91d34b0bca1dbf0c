package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/http/response"
	"github.com/yungbote/assignment-backend/internal/services"
)

const maxUploadBytes = 5 << 20

type BatchHandler struct {
	batches services.BatchService
}

func NewBatchHandler(batches services.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// GET /api/admin/assignments
func (h *BatchHandler) List(c *gin.Context) {
	out, err := h.batches.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"batches": out})
}

type uploadLinksRequest struct {
	Date  string            `json:"date"`
	Links []types.BatchLink `json:"links"`
}

// POST /api/admin/assignments/upload
func (h *BatchHandler) Upload(c *gin.Context) {
	var req uploadLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(c, "invalid request body")
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), req.Date, req.Links)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, batch)
}

// POST /api/admin/assignments/upload-csv (multipart: csvFile, date)
func (h *BatchHandler) UploadCSV(c *gin.Context) {
	fh, err := c.FormFile("csvFile")
	if err != nil {
		response.RespondBadRequest(c, "CSV file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "validation", errUploadTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondBadRequest(c, "could not read the uploaded file")
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		response.RespondBadRequest(c, "could not read the uploaded file")
		return
	}

	batch, err := h.batches.Import(c.Request.Context(), c.PostForm("date"), fh.Filename, raw)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, batch)
}

// POST /api/admin/assignments/:batchId/distribute
func (h *BatchHandler) Distribute(c *gin.Context) {
	batchID, ok := uuidParam(c, "batchId")
	if !ok {
		return
	}
	res, err := h.batches.Distribute(c.Request.Context(), batchID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/admin/assignments/:batchId/non-compliant
func (h *BatchHandler) NonCompliant(c *gin.Context) {
	batchID, ok := uuidParam(c, "batchId")
	if !ok {
		return
	}
	out, err := h.batches.NonCompliantUsers(c.Request.Context(), batchID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": out})
}
