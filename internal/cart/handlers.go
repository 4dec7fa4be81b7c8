package cart

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ameedanxari/menumaker-sub006/internal/common"
	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
	"github.com/ameedanxari/menumaker-sub006/internal/dish"
	"github.com/ameedanxari/menumaker-sub006/internal/events"
	"github.com/ameedanxari/menumaker-sub006/internal/obs"
)

// DishResolver resolves a dish for cart insertion, enforcing availability
// and business ownership.
type DishResolver interface {
	GetForCart(ctx context.Context, dishID, businessID string) (dish.Dish, error)
}

// Handler exposes the cart HTTP surface.
type Handler struct {
	Manager       *Manager
	Dishes        DishResolver
	Orders        OrderCreator
	Bus           *events.Bus
	Logger        zerolog.Logger
	LookupTimeout time.Duration
}

type createCartRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
}

type addItemRequest struct {
	DishID   string `json:"dishId" validate:"required"`
	Quantity int    `json:"qty" validate:"omitempty,gte=1,lte=99"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"qty" validate:"required,gte=0,lte=99"`
}

type setBusinessRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	ctrl, err := h.Manager.Create(r.Context())
	if err != nil {
		h.internal(w, err, "create cart")
		return
	}
	snap := ctrl.SetBusiness(req.BusinessID)
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("create")
	common.JSON(w, http.StatusCreated, map[string]any{"data": snap})
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ctrl.Snapshot()})
}

// AddItem handles POST /api/v1/carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	d, err := h.Dishes.GetForCart(r.Context(), req.DishID, ctrl.Snapshot().BusinessID)
	if err != nil {
		h.writeDishError(w, err)
		return
	}

	snap, err := ctrl.AddItem(d.BusinessID, Item{
		DishID:         d.ID,
		Name:           d.Name,
		UnitPriceCents: d.PriceCents,
	})
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	if req.Quantity > 1 {
		if i := indexOfSnapshot(snap, d.ID); i >= 0 {
			snap = ctrl.UpdateQuantity(d.ID, snap.Items[i].Quantity+req.Quantity-1)
		}
	}
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("add_item")
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// UpdateQuantity handles PATCH /api/v1/carts/{id}/items/{dishId}.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	snap := ctrl.UpdateQuantity(chi.URLParam(r, "dishId"), *req.Quantity)
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("update_quantity")
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// RemoveItem handles DELETE /api/v1/carts/{id}/items/{dishId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap := ctrl.RemoveItem(chi.URLParam(r, "dishId"))
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("remove_item")
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// SetBusiness handles PUT /api/v1/carts/{id}/business.
func (h *Handler) SetBusiness(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req setBusinessRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	snap := ctrl.SetBusiness(req.BusinessID)
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("set_business")
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// ApplyCoupon handles POST /api/v1/carts/{id}/apply-coupon.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req applyCouponRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	ctx := r.Context()
	if h.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.LookupTimeout)
		defer cancel()
	}

	snap, err := ctrl.ApplyCoupon(ctx, req.Code)
	if persistErr := h.Manager.Persist(r.Context(), ctrl); persistErr != nil {
		h.Logger.Warn().Err(persistErr).Str("cart_id", ctrl.ID()).Msg("persist after coupon apply failed")
	}

	switch {
	case err == nil:
		obs.CountCouponApply("applied", "")
		h.emit(r.Context(), events.TopicCouponApplied, ctrl.ID(), map[string]any{
			"code":          snap.Coupon.Code,
			"discountCents": int64(snap.Coupon.DiscountCents),
		})
		common.JSON(w, http.StatusOK, map[string]any{"data": snap})
	case coupon.IsValidationError(err):
		reason := coupon.RejectionReason(err)
		obs.CountCouponApply("rejected", reason)
		h.emit(r.Context(), events.TopicCouponRejected, ctrl.ID(), map[string]any{
			"code":   coupon.NormalizeCode(req.Code),
			"reason": reason,
		})
		common.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"data":  snap,
			"error": common.ErrorBody{Code: "coupon_rejected", Message: "coupon rejected", Details: map[string]string{"reason": reason}},
		})
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusConflict, "empty_cart", "cannot apply a coupon to an empty cart", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "coupon code is required", nil)
	case errors.Is(err, ErrSuperseded):
		common.JSONError(w, http.StatusConflict, "superseded", "a newer coupon attempt superseded this one", nil)
	default:
		obs.CountCouponApply("transient", "unavailable")
		common.JSONError(w, http.StatusServiceUnavailable, "coupon_unavailable", "coupon service unavailable, try again", nil)
	}
}

// RemoveCoupon handles DELETE /api/v1/carts/{id}/coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap := ctrl.RemoveCoupon()
	if err := h.Manager.Persist(r.Context(), ctrl); err != nil {
		h.internal(w, err, "persist cart")
		return
	}
	obs.CountCartMutation("remove_coupon")
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// Checkout handles POST /api/v1/carts/{id}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if h.Orders == nil {
		h.internal(w, errors.New("order creator not configured"), "checkout")
		return
	}
	orderID, snap, err := ctrl.Checkout(r.Context(), h.Orders)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			common.JSONError(w, http.StatusConflict, "empty_cart", "cannot check out an empty cart", nil)
			return
		}
		obs.CountCheckout("failure")
		h.Logger.Error().Err(err).Str("cart_id", ctrl.ID()).Msg("checkout failed")
		common.JSONError(w, http.StatusBadGateway, "checkout_failed", "order creation failed", nil)
		return
	}
	obs.CountCheckout("success")
	if err := h.Manager.Drop(r.Context(), ctrl.ID()); err != nil {
		h.Logger.Warn().Err(err).Str("cart_id", ctrl.ID()).Msg("drop cart after checkout failed")
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"orderId": orderID,
		"cart":    snap,
	}})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	ctrl, err := h.Manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "cart_not_found", "cart not found", nil)
		case errors.Is(err, ErrInvalidInput):
			common.JSONError(w, http.StatusBadRequest, "invalid_input", "cart id is required", nil)
		default:
			h.internal(w, err, "load cart")
		}
		return nil, false
	}
	return ctrl, true
}

func (h *Handler) writeDishError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dish.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "dish_not_found", "dish not found", nil)
	case errors.Is(err, dish.ErrUnavailable):
		common.JSONError(w, http.StatusUnprocessableEntity, "dish_unavailable", "dish is not available", nil)
	case errors.Is(err, dish.ErrWrongBusiness):
		common.JSONError(w, http.StatusConflict, "wrong_business", "dish belongs to another business", nil)
	default:
		h.internal(w, err, "resolve dish")
	}
}

func (h *Handler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWrongBusiness):
		common.JSONError(w, http.StatusConflict, "wrong_business", "cart is pinned to another business", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid item", nil)
	default:
		h.internal(w, err, "mutate cart")
	}
}

func (h *Handler) internal(w http.ResponseWriter, err error, msg string) {
	h.Logger.Error().Err(err).Msg(msg)
	common.JSONError(w, http.StatusInternalServerError, "internal", "internal error", nil)
}

func (h *Handler) emit(ctx context.Context, topic, cartID string, payload map[string]any) {
	if h.Bus == nil {
		return
	}
	if _, err := h.Bus.Emit(ctx, topic, cartID, payload); err != nil {
		h.Logger.Warn().Err(err).Str("topic", topic).Msg("event emit failed")
	}
}

func indexOfSnapshot(snap Snapshot, dishID string) int {
	for i := range snap.Items {
		if snap.Items[i].DishID == dishID {
			return i
		}
	}
	return -1
}
