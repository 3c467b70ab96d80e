package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Variants  []Variant `json:"variants"`
	CreatorID uuid.UUID `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Variant struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	SKU             string    `json:"sku"`
	RegularPrice    float64   `json:"regular_price"`
	DiscountedPrice *float64  `json:"discounted_price,omitempty"`
	InStock         int       `json:"in_stock"`
	SoldAmount      int       `json:"sold_amount"`
	Availability    bool      `json:"availability"`
}

// UnitPrice is the price a variant contributes to an order line:
// the discounted price when one is set, the regular price otherwise.
func (v Variant) UnitPrice() float64 {
	if v.DiscountedPrice != nil && *v.DiscountedPrice > 0 {
		return *v.DiscountedPrice
	}
	return v.RegularPrice
}
