package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameedanxari/menumaker-sub006/internal/common"
)

type reader interface {
	List(ctx context.Context, limit, offset int) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
}

// Handler exposes order read endpoints.
type Handler struct {
	Orders reader
}

// List handles GET /api/v1/orders.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "internal", "order service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	orders, err := h.Orders.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": orders})
}

// Get handles GET /api/v1/orders/{orderId}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "internal", "order service not configured", nil)
		return
	}
	id := chi.URLParam(r, "orderId")
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NewAppError("order_not_found", "order not found", http.StatusNotFound, err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}
