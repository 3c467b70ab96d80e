package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /order. Buyers order for themselves; promotions are
// an admin-only path.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	var in service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	in.UserID = uuid.Nil
	in.Promotions = nil

	order, err := h.orders.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "New Order Created.",
		"order":   order,
	})
}

// CreateAdmin handles POST /order/admin: create an order on behalf of a
// buyer, optionally with promotions attached.
func (h *OrderHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	var in service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if in.UserID == uuid.Nil {
		writeError(w, apperrors.Validation("user_id is required"))
		return
	}

	order, err := h.orders.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "New Order Created.",
		"order":   order,
	})
}

// UpdateAdmin handles PUT /order/admin/{id}; only pending orders accept
// edits.
func (h *OrderHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid order id"))
		return
	}

	var in service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	order, err := h.orders.Update(r.Context(), principal, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order Updated.",
		"order":   order,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid order id"))
		return
	}

	order, err := h.orders.Get(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	orders, err := h.orders.ListMine(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	orders, err := h.orders.ListAll(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
