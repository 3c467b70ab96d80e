package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
	"github.com/shopino/commerce-service/internal/service"
)

type TransactionHandler struct {
	transactions *service.TransactionService
}

func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	var in service.CreateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	trx, err := h.transactions.Create(r.Context(), principal, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction Created",
		"transaction": trx,
	})
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid transaction id"))
		return
	}

	trx, err := h.transactions.Get(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trx)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	status := models.TransactionStatus(r.URL.Query().Get("status"))
	txs, err := h.transactions.List(r.Context(), principal, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// StartPaymentProcess handles POST /transaction/{id}/payment-process:
// pending -> in-process, returning the available Card-To-Card accounts.
func (h *TransactionHandler) StartPaymentProcess(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid transaction id"))
		return
	}

	trx, cards, err := h.transactions.StartPaymentProcess(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Payment Processing Started",
		"transaction":  trx,
		"card_to_card": cards,
	})
}

// SubmitPaymentResult handles PATCH /transaction/{id}/submit-payment-result.
func (h *TransactionHandler) SubmitPaymentResult(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid transaction id"))
		return
	}

	var result models.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	trx, err := h.transactions.SubmitPaymentResult(r.Context(), principal, id, result)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Payment Result Submitted",
		"transaction": trx,
	})
}

// ApprovePayment handles POST /transaction/{id}/approve-payment — the
// transition that commits the stock decrement.
func (h *TransactionHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid transaction id"))
		return
	}

	trx, err := h.transactions.ApprovePayment(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Payment Approved",
		"transaction": trx,
	})
}

// RejectPayment handles POST /transaction/{id}/reject-payment.
func (h *TransactionHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, apperrors.Authorization("not authenticated"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Validation("invalid transaction id"))
		return
	}

	trx, err := h.transactions.RejectPayment(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Payment Rejected",
		"transaction": trx,
	})
}
