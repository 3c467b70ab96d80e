package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

const PaymentMethodCardToCard = "Card-To-Card"

// LineItem references a purchasable variant by id; price and stock are
// always resolved against the live catalog, never trusted from the client.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type ShippingAddress struct {
	ReceiverName  string  `json:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone"`
	Address       string  `json:"address"`
	Country       string  `json:"country"`
	Province      string  `json:"province"`
	City          string  `json:"city"`
	PostalCode    string  `json:"postal_code"`
	ShippingPrice float64 `json:"shipping_price"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CreatorID       uuid.UUID       `json:"creator_id"`
	UpdatedBy       uuid.UUID       `json:"updated_by"`
	Status          OrderStatus     `json:"status"`
	CartItems       []OrderItem     `json:"cart_items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      float64         `json:"items_price"`
	// TaxRate is snapshotted from the active app config when the order is
	// created; TaxPrice is never recomputed after that.
	TaxRate       float64     `json:"tax_rate"`
	TaxPrice      float64     `json:"tax_price"`
	Promotions    []uuid.UUID `json:"promotions,omitempty"`
	TotalDiscount float64     `json:"total_discount"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a persisted cart line with the unit price captured at
// order-creation time.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// Lines strips the price snapshots back down to catalog references, for
// stock re-checks.
func (o *Order) Lines() []LineItem {
	lines := make([]LineItem, 0, len(o.CartItems))
	for _, it := range o.CartItems {
		lines = append(lines, LineItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	return lines
}
