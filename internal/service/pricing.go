package service

import (
	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/models"
)

// Catalog is the resolved view of the variants an order references, keyed
// by variant id.
type Catalog map[uuid.UUID]models.Variant

// ResolveLines checks that every cart line maps to a live variant owned by
// the product the line names. An unresolvable line fails the whole
// operation; lines are never silently dropped from the total.
func ResolveLines(lines []models.LineItem, catalog Catalog) error {
	for _, line := range lines {
		v, ok := catalog[line.VariantID]
		if !ok || v.ProductID != line.ProductID {
			return apperrors.LineItemNotFound(line.ProductID, line.VariantID)
		}
	}
	return nil
}

// CheckInStock validates every line against current stock before anything
// is committed. A line fails when its quantity exceeds the variant's stock
// or the variant is flagged unavailable.
func CheckInStock(lines []models.LineItem, catalog Catalog) error {
	if err := ResolveLines(lines, catalog); err != nil {
		return err
	}
	for _, line := range lines {
		v := catalog[line.VariantID]
		if line.Quantity > v.InStock || !v.Availability {
			return apperrors.InsufficientStock(line.ProductID)
		}
	}
	return nil
}

// ComputeItemsPrice sums line subtotals using the live unit price of each
// variant (discounted price when set, regular price otherwise).
func ComputeItemsPrice(lines []models.LineItem, catalog Catalog) (float64, error) {
	if err := ResolveLines(lines, catalog); err != nil {
		return 0, err
	}
	var total float64
	for _, line := range lines {
		total += catalog[line.VariantID].UnitPrice() * float64(line.Quantity)
	}
	return total, nil
}

// ComputeTax applies the snapshotted tax rate to the discounted subtotal.
// Discount comes off the items price before tax.
func ComputeTax(itemsPrice, totalDiscount, taxRatePercent float64) float64 {
	base := itemsPrice - totalDiscount
	if base < 0 {
		base = 0
	}
	return base * (taxRatePercent / 100)
}
