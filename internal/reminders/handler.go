package reminders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/shared/server/middleware"
	"medisafe-backend/internal/shared/server/respond"
)

// Handler exposes reminder CRUD endpoints.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches reminder routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reminders", h.list)
	rg.POST("/reminders", h.create)
	rg.PUT("/reminders/:id", h.update)
	rg.POST("/reminders/:id/toggle", h.toggle)
	rg.DELETE("/reminders/:id", h.delete)
}

type reminderRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
	Completed bool   `json:"completed"`
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	respond.JSON(c, http.StatusOK, h.Store.List(userID))
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	r, err := h.Store.Create(userID, Reminder{Title: req.Title, Date: req.Date, Notes: req.Notes})
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	respond.JSON(c, http.StatusCreated, r)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id, ok := h.reminderID(c)
	if !ok {
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	r, err := h.Store.Update(userID, id, Reminder{
		Title:     req.Title,
		Date:      req.Date,
		Notes:     req.Notes,
		Completed: req.Completed,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, r)
}

func (h *Handler) toggle(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id, ok := h.reminderID(c)
	if !ok {
		return
	}

	r, err := h.Store.Toggle(userID, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, r)
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id, ok := h.reminderID(c)
	if !ok {
		return
	}

	if err := h.Store.Delete(userID, id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) reminderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid reminder id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "reminder not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "reminder operation failed", nil)
	}
}
