package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
)

type ConfigStore interface {
	Latest(ctx context.Context) (*models.AppConfig, error)
	Append(ctx context.Context, cfg *models.AppConfig) error
}

type ConfigHandler struct {
	config ConfigStore
}

func NewConfigHandler(config ConfigStore) *ConfigHandler {
	return &ConfigHandler{config: config}
}

// Latest handles GET /config: the highest-version config row. The
// Card-To-Card pool is only exposed to admins.
func (h *ConfigHandler) Latest(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cfg == nil {
		writeError(w, apperrors.NotFound("no app config available"))
		return
	}

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok || !principal.IsAdmin() {
		redacted := *cfg
		redacted.CardToCard = nil
		cfg = &redacted
	}
	writeJSON(w, http.StatusOK, cfg)
}

type appendConfigInput struct {
	Name       string                     `json:"name"`
	TaxRate    float64                    `json:"tax_rate"`
	Currencies []string                   `json:"currencies"`
	CardToCard []models.CardToCardAccount `json:"card_to_card"`
}

// Append handles POST /config/admin: insert the next config version. The
// previous versions stay untouched as history.
func (h *ConfigHandler) Append(w http.ResponseWriter, r *http.Request) {
	var in appendConfigInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if in.Name == "" {
		writeError(w, apperrors.Validation("name is required"))
		return
	}
	if in.TaxRate < 0 || in.TaxRate >= 100 {
		writeError(w, apperrors.Validation("tax_rate must be between 0 and 100"))
		return
	}

	cfg := &models.AppConfig{
		Name:       in.Name,
		TaxRate:    in.TaxRate,
		Currencies: in.Currencies,
		CardToCard: in.CardToCard,
	}
	if err := h.config.Append(r.Context(), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Config Created",
		"version": cfg.Version,
	})
}
