package dish

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameedanxari/menumaker-sub006/internal/common"
)

// Handler exposes public menu endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/businesses/{businessId}/dishes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "internal", "dish service not configured", nil)
		return
	}
	businessID := chi.URLParam(r, "businessId")
	dishes, err := h.service.ListByBusiness(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NewAppError("business_not_found", "business not found", http.StatusNotFound, err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": dishes})
}
