package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopino/commerce-service/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a business error kind to its HTTP status. Every failure
// body carries {"message": ...}; only genuinely unexpected errors become a
// 500, and those are logged with their cause.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindUnsupportedPaymentMethod:
		status = http.StatusBadRequest
	case apperrors.KindAuthorization:
		status = http.StatusForbidden
	case apperrors.KindNotFound, apperrors.KindLineItemNotFound:
		status = http.StatusNotFound
	case apperrors.KindInsufficientStock, apperrors.KindInvalidTransactionState:
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("internal error", slog.Any("error", err))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"message": msg})
}
