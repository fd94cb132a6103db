package insights

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/llm"
	"medisafe-backend/internal/shared/server/middleware"
	"medisafe-backend/internal/shared/server/respond"
)

// Handler exposes insight endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches insight routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/insights/explain", h.explain)
	rg.POST("/insights/questions", h.questions)
	rg.POST("/insights/term", h.term)
}

type documentRequest struct {
	DocumentID string `json:"documentId"`
}

func (h *Handler) explain(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	out, err := h.Svc.Explain(c.Request.Context(), userID, req.DocumentID)
	if err != nil {
		h.fail(c, err, "failed to explain document")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"explanation": out.Explanation,
		"questions":   out.Questions,
	})
}

func (h *Handler) questions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	qs, err := h.Svc.Questions(c.Request.Context(), userID, req.DocumentID)
	if err != nil {
		h.fail(c, err, "failed to generate questions")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"questions": qs})
}

type termRequest struct {
	Term       string `json:"term"`
	DocumentID string `json:"documentId"`
}

func (h *Handler) term(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req termRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	explanation, err := h.Svc.ExplainTerm(c.Request.Context(), userID, req.Term, req.DocumentID)
	if err != nil {
		h.fail(c, err, "failed to explain term")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"explanation": explanation})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNoContent):
		respond.Error(c, http.StatusUnprocessableEntity, "no_content", err.Error(), nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, documents.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "ai processing is not configured", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "ai_error", msg, nil)
	}
}
