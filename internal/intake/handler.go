package intake

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/llm"
	"medisafe-backend/internal/shared/metrics"
	"medisafe-backend/internal/shared/server/middleware"
	"medisafe-backend/internal/shared/server/respond"
	"medisafe-backend/internal/shared/telemetry"
)

const maxContentBytes = 15 << 20 // 15MB of base64 text

// Handler exposes the document processing endpoint.
type Handler struct {
	Svc  *Service
	Docs *documents.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs *documents.Service) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches intake routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/process", h.process)
}

type processRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

func (h *Handler) process(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContentBytes)

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	metrics.IncIntakeStarted()
	start := time.Now()

	result, err := h.Svc.Process(c.Request.Context(), Request{
		UserID:   userID,
		FileName: req.FileName,
		MimeType: req.MimeType,
		Content:  req.Content,
	})
	if err != nil {
		h.failProcess(c, err)
		return
	}

	file, err := h.Docs.UploadFile(c.Request.Context(), userID, req.FileName,
		bytes.NewReader(result.Raw), string(result.Document.Type))
	if err != nil {
		metrics.IncIntakeFailed("storage")
		telemetry.Error("intake.store_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store document", nil)
		return
	}

	doc := result.Document
	doc.FileID = file.ID
	doc.File = &file
	doc, err = h.Docs.Create(c.Request.Context(), doc)
	if err != nil {
		metrics.IncIntakeFailed("persist")
		telemetry.Error("intake.persist_failed", map[string]any{
			"user_id": userID,
			"file_id": file.ID,
			"error":   err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save document", nil)
		return
	}

	metrics.IncIntakeCompleted()
	metrics.ObserveIntakeDuration(time.Since(start))
	telemetry.Info("intake.completed", map[string]any{
		"user_id":       userID,
		"document_id":   doc.ID,
		"document_type": string(doc.Type),
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	respond.JSON(c, http.StatusCreated, toProcessResponse(doc))
}

func (h *Handler) failProcess(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		metrics.IncIntakeFailed("validation")
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrDecode):
		metrics.IncIntakeFailed("decode")
		respond.Error(c, http.StatusBadRequest, "decode_error", err.Error(), nil)
	case errors.Is(err, llm.ErrNotConfigured):
		metrics.IncIntakeFailed("not_configured")
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "ai processing is not configured", nil)
	case errors.Is(err, ErrAIProcessing):
		metrics.IncIntakeFailed("ai")
		telemetry.Error("intake.ai_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadGateway, "ai_error", "failed to process document", nil)
	default:
		metrics.IncIntakeFailed("internal")
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
	}
}

func toProcessResponse(doc documents.Document) gin.H {
	resp := gin.H{
		"id":           doc.ID,
		"name":         doc.Name,
		"documentType": string(doc.Type),
		"summary":      doc.Summary,
		"content":      doc.Content,
		"uploadDate":   doc.UploadDate.Format("2006-01-02"),
	}
	if doc.File != nil {
		resp["file"] = gin.H{
			"id":        doc.File.ID,
			"name":      doc.File.Name,
			"url":       doc.File.URL,
			"sizeBytes": doc.File.SizeBytes,
			"mimeType":  doc.File.MimeType,
		}
	}
	return resp
}
