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

type PromotionHandler struct {
	promotions *service.PromotionService
}

func NewPromotionHandler(promotions *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	var in service.PromotionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	p, err := h.promotions.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Promotion Created",
		"promotion": p,
	})
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid promotion id"))
		return
	}

	var in service.PromotionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	p, err := h.promotions.Update(r.Context(), principal, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Promotion Updated",
		"promotion": p,
	})
}

func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid promotion id"))
		return
	}

	if err := h.promotions.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Promotion Deleted"})
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid promotion id"))
		return
	}

	p, err := h.promotions.Get(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	promotions, err := h.promotions.List(r.Context(), principal, activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promotions)
}
