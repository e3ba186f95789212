package holidays

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/shared/metrics"
	"holiday-backend/internal/shared/server/respond"
)

// Handler exposes the registry over HTTP.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{Registry: registry}
}

// RegisterRoutes attaches holiday routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/public_holidays", h.list)
	rg.POST("/add_public_holiday", h.add)
	rg.DELETE("/delete_public_holiday", h.delete)
}

type holidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Registry.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to load holidays", nil)
		return
	}
	respond.OK(c, gin.H{"holidays": items})
}

func (h *Handler) add(c *gin.Context) {
	req, ok := bindHoliday(c)
	if !ok {
		return
	}

	holiday, err := h.Registry.Add(c.Request.Context(), req.Name, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid holiday name or date", nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "duplicate", "Holiday with this name and date already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to save holiday", nil)
		}
		return
	}

	metrics.IncHolidayAdded()
	respond.OK(c, gin.H{"message": "Holiday added successfully", "holiday": holiday})
}

func (h *Handler) delete(c *gin.Context) {
	req, ok := bindHoliday(c)
	if !ok {
		return
	}

	if _, err := h.Registry.Delete(c.Request.Context(), req.Name, req.Date); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid holiday name or date", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Holiday not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to delete holiday", nil)
		}
		return
	}

	metrics.IncHolidayDeleted()
	respond.Message(c, "Holiday deleted successfully")
}

func bindHoliday(c *gin.Context) (holidayRequest, bool) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return req, false
	}
	if req.Name == "" || req.Date == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Missing holiday name or date", nil)
		return req, false
	}
	return req, true
}
