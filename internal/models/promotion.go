package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicableProduct scopes a promotion to a minimum quantity of one variant.
type ApplicableProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type PriceGate struct {
	Active bool    `json:"active"`
	Price  float64 `json:"price"`
}

type PercentageDiscount struct {
	Active     bool    `json:"active"`
	Percentage float64 `json:"percentage"` // must stay below 100
}

type UsageCap struct {
	IsCapped      bool `json:"is_capped"`
	TimesUsed     int  `json:"times_used"`
	MaxTimesToUse int  `json:"max_times_to_use"`
}

type Promotion struct {
	ID                  uuid.UUID           `json:"id"`
	PromotionIdentifier string              `json:"promotion_identifier"`
	Description         string              `json:"description"`
	Active              bool                `json:"active"`
	ActiveFrom          time.Time           `json:"active_from"`
	ActiveUntil         time.Time           `json:"active_until"`
	ApplicableProducts  []ApplicableProduct `json:"applicable_products,omitempty"`
	AccessibleRoles     []string            `json:"accessible_roles,omitempty"`
	MinTotalOrder       PriceGate           `json:"min_total_order"`
	MaximumDiscount     PriceGate           `json:"maximum_discount"`
	PercentageDiscount  PercentageDiscount  `json:"percentage_discount"`
	FixedDiscount       PriceGate           `json:"fixed_discount"`
	UsageCap            UsageCap            `json:"usage_cap"`
	CreatorID           uuid.UUID           `json:"creator_id"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
