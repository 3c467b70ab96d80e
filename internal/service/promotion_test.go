package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/models"
)

func basePromotion(now time.Time) models.Promotion {
	return models.Promotion{
		ID:                  uuid.New(),
		PromotionIdentifier: "SUMMER",
		Description:         "summer sale",
		Active:              true,
		ActiveFrom:          now.Add(-time.Hour),
		ActiveUntil:         now.Add(time.Hour),
	}
}

func TestPromotionDiscountPercentageCappedByMaximum(t *testing.T) {
	now := time.Now()
	p := basePromotion(now)
	p.PercentageDiscount = models.PercentageDiscount{Active: true, Percentage: 10}
	p.MaximumDiscount = models.PriceGate{Active: true, Price: 5}

	// 10% of a 100 cart would be 10; the maximum-discount gate caps it at 5
	d, err := PromotionDiscount(context.Background(), p, nil, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)
}

func TestPromotionDiscountPercentageUncapped(t *testing.T) {
	now := time.Now()
	p := basePromotion(now)
	p.PercentageDiscount = models.PercentageDiscount{Active: true, Percentage: 10}

	d, err := PromotionDiscount(context.Background(), p, nil, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}

func TestPromotionDiscountFixed(t *testing.T) {
	now := time.Now()
	p := basePromotion(now)
	p.FixedDiscount = models.PriceGate{Active: true, Price: 15}

	d, err := PromotionDiscount(context.Background(), p, nil, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 15.0, d)
}

func TestPromotionDiscountPercentageWinsOverFixed(t *testing.T) {
	now := time.Now()
	p := basePromotion(now)
	p.PercentageDiscount = models.PercentageDiscount{Active: true, Percentage: 10}
	p.FixedDiscount = models.PriceGate{Active: true, Price: 50}

	d, err := PromotionDiscount(context.Background(), p, nil, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}

func TestPromotionDiscountNeverExceedsSubtotal(t *testing.T) {
	now := time.Now()
	p := basePromotion(now)
	p.FixedDiscount = models.PriceGate{Active: true, Price: 500}

	d, err := PromotionDiscount(context.Background(), p, nil, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)
}

func TestPromotionDiscountGates(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		mutate   func(*models.Promotion)
		role     string
		subtotal float64
		wantKind apperrors.Kind
	}{
		{
			name:     "inactive",
			mutate:   func(p *models.Promotion) { p.Active = false },
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "before window",
			mutate:   func(p *models.Promotion) { p.ActiveFrom = now.Add(time.Hour); p.ActiveUntil = now.Add(2 * time.Hour) },
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "after window",
			mutate:   func(p *models.Promotion) { p.ActiveFrom = now.Add(-2 * time.Hour); p.ActiveUntil = now.Add(-time.Hour) },
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "role not allow-listed",
			mutate:   func(p *models.Promotion) { p.AccessibleRoles = []string{models.RoleCreator} },
			role:     models.RoleCustomer,
			wantKind: apperrors.KindAuthorization,
		},
		{
			name:     "below minimum order",
			mutate:   func(p *models.Promotion) { p.MinTotalOrder = models.PriceGate{Active: true, Price: 200} },
			subtotal: 100,
			wantKind: apperrors.KindValidation,
		},
		{
			name: "usage cap reached",
			mutate: func(p *models.Promotion) {
				p.UsageCap = models.UsageCap{IsCapped: true, TimesUsed: 3, MaxTimesToUse: 3}
			},
			wantKind: apperrors.KindValidation,
		},
		{
			name:     "no active discount",
			mutate:   func(p *models.Promotion) { p.PercentageDiscount.Active = false; p.FixedDiscount.Active = false },
			wantKind: apperrors.KindValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := basePromotion(now)
			p.PercentageDiscount = models.PercentageDiscount{Active: true, Percentage: 10}
			tc.mutate(&p)

			role := tc.role
			if role == "" {
				role = models.RoleCustomer
			}
			subtotal := tc.subtotal
			if subtotal == 0 {
				subtotal = 100
			}

			_, err := PromotionDiscount(context.Background(), p, nil, subtotal, role, now)
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, apperrors.KindOf(err))
		})
	}
}

func TestPromotionDiscountApplicableProducts(t *testing.T) {
	now := time.Now()
	productID := uuid.New()
	variantID := uuid.New()

	p := basePromotion(now)
	p.PercentageDiscount = models.PercentageDiscount{Active: true, Percentage: 10}
	p.ApplicableProducts = []models.ApplicableProduct{
		{ProductID: productID, VariantID: variantID, Quantity: 2},
	}

	lines := []models.LineItem{{ProductID: productID, VariantID: variantID, Quantity: 1}}
	_, err := PromotionDiscount(context.Background(), p, lines, 100, models.RoleCustomer, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	lines[0].Quantity = 2
	d, err := PromotionDiscount(context.Background(), p, lines, 100, models.RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}
