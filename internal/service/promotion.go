package service

import (
	"context"
	"time"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/concurrency"
	"github.com/shopino/commerce-service/internal/models"
)

const promotionCheckWorkers = 4

// PromotionDiscount validates a promotion against an order's lines and
// returns the discount it contributes to the given subtotal.
//
// Percentage and fixed discounts do not compose: when both are flagged
// active the percentage discount wins. The result is bounded by the
// promotion's maximum-discount gate and never exceeds the subtotal.
func PromotionDiscount(ctx context.Context, p models.Promotion, lines []models.LineItem, subtotal float64, buyerRole string, now time.Time) (float64, error) {
	if !p.Active {
		return 0, apperrors.Validation("promotion is not active")
	}
	if now.Before(p.ActiveFrom) || now.After(p.ActiveUntil) {
		return 0, apperrors.Validation("promotion is outside its active window")
	}
	if len(p.AccessibleRoles) > 0 && !containsRole(p.AccessibleRoles, buyerRole) {
		return 0, apperrors.Authorization("promotion is not accessible to this role")
	}
	if p.MinTotalOrder.Active && subtotal < p.MinTotalOrder.Price {
		return 0, apperrors.Validation("order total below promotion minimum")
	}
	if p.UsageCap.IsCapped && p.UsageCap.TimesUsed >= p.UsageCap.MaxTimesToUse {
		return 0, apperrors.Validation("promotion usage cap reached")
	}
	if err := checkApplicableProducts(ctx, p.ApplicableProducts, lines); err != nil {
		return 0, err
	}

	var discount float64
	switch {
	case p.PercentageDiscount.Active:
		discount = subtotal * (p.PercentageDiscount.Percentage / 100)
	case p.FixedDiscount.Active:
		discount = p.FixedDiscount.Price
	default:
		return 0, apperrors.Validation("promotion has no active discount")
	}

	if p.MaximumDiscount.Active && discount > p.MaximumDiscount.Price {
		discount = p.MaximumDiscount.Price
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, nil
}

// checkApplicableProducts requires every scoped product triple to be
// covered by an order line of at least the required quantity. An empty
// scope applies to the whole order. Lines are checked in parallel since a
// promotion may scope many variants.
func checkApplicableProducts(ctx context.Context, required []models.ApplicableProduct, lines []models.LineItem) error {
	if len(required) == 0 {
		return nil
	}

	byVariant := make(map[[2]string]int, len(lines))
	for _, line := range lines {
		byVariant[[2]string{line.ProductID.String(), line.VariantID.String()}] += line.Quantity
	}

	failed := make([]bool, len(required))
	concurrency.ForEach(ctx, promotionCheckWorkers, len(required), func(_ context.Context, i int) {
		ap := required[i]
		qty := byVariant[[2]string{ap.ProductID.String(), ap.VariantID.String()}]
		if qty < ap.Quantity {
			failed[i] = true
		}
	})

	for i, f := range failed {
		if f {
			return apperrors.Newf(apperrors.KindValidation,
				"promotion requires at least %d of variant %s", required[i].Quantity, required[i].VariantID)
		}
	}
	return nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
