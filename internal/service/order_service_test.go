package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
)

func newOrderService(store *fakeStore) *OrderService {
	return NewOrderService(
		&fakeCatalog{store: store},
		&fakeOrders{store: store},
		&fakePromotions{store: store},
		&fakeConfig{store: store},
		&fakeUsers{store: store},
	)
}

func shipping() models.ShippingAddress {
	return models.ShippingAddress{
		ReceiverName:  "Receiver",
		ReceiverPhone: "0912",
		Address:       "1 Main St",
		Country:       "IR",
		Province:      "Tehran",
		City:          "Tehran",
		PostalCode:    "12345",
	}
}

func TestOrderCreateComputesTotalsServerSide(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)
	v := store.addVariant(models.Variant{RegularPrice: 50, InStock: 10, Availability: true})

	svc := newOrderService(store)
	principal := auth.Principal{UserID: buyerID, Role: models.RoleCustomer}

	order, err := svc.Create(context.Background(), principal, CreateOrderInput{
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 2}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, order.ItemsPrice)
	assert.Equal(t, 9.0, order.TaxRate, "tax rate snapshotted from latest config")
	assert.Equal(t, 9.0, order.TaxPrice)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, buyerID, order.UserID)
	require.Len(t, order.CartItems, 1)
	assert.Equal(t, 50.0, order.CartItems[0].UnitPrice, "unit price snapshotted from catalog")
}

func TestOrderCreateFailsOnUnknownLine(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)

	svc := newOrderService(store)
	principal := auth.Principal{UserID: buyerID, Role: models.RoleCustomer}

	_, err := svc.Create(context.Background(), principal, CreateOrderInput{
		CartItems:       []models.LineItem{{ProductID: uuid.New(), VariantID: uuid.New(), Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindLineItemNotFound, apperrors.KindOf(err))
}

func TestOrderCreateFailsOnInsufficientStock(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)
	v := store.addVariant(models.Variant{RegularPrice: 50, InStock: 1, Availability: true})

	svc := newOrderService(store)
	principal := auth.Principal{UserID: buyerID, Role: models.RoleCustomer}

	_, err := svc.Create(context.Background(), principal, CreateOrderInput{
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 2}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInsufficientStock, apperrors.KindOf(err))
}

func TestOrderCreateOnBehalfRequiresAdmin(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)
	otherID := store.addUser(models.RoleCustomer)
	v := store.addVariant(models.Variant{RegularPrice: 50, InStock: 10, Availability: true})

	svc := newOrderService(store)
	in := CreateOrderInput{
		UserID:          buyerID,
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	}

	_, err := svc.Create(context.Background(), auth.Principal{UserID: otherID, Role: models.RoleCustomer}, in)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))

	adminID := store.addUser(models.RoleAdmin)
	order, err := svc.Create(context.Background(), auth.Principal{UserID: adminID, Role: models.RoleAdmin}, in)
	require.NoError(t, err)
	assert.Equal(t, buyerID, order.UserID)
	assert.Equal(t, adminID, order.CreatorID)
}

func TestOrderCreateWithPromotionDiscountsBeforeTax(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 10}
	buyerID := store.addUser(models.RoleCustomer)
	adminID := store.addUser(models.RoleAdmin)
	v := store.addVariant(models.Variant{RegularPrice: 100, InStock: 10, Availability: true})

	promoID := uuid.New()
	store.promotions[promoID] = &models.Promotion{
		ID:                  promoID,
		PromotionIdentifier: "TEN",
		Description:         "ten percent",
		Active:              true,
		ActiveFrom:          time.Now().Add(-time.Hour),
		ActiveUntil:         time.Now().Add(time.Hour),
		PercentageDiscount:  models.PercentageDiscount{Active: true, Percentage: 10},
	}

	svc := newOrderService(store)
	order, err := svc.Create(context.Background(), auth.Principal{UserID: adminID, Role: models.RoleAdmin}, CreateOrderInput{
		UserID:          buyerID,
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
		Promotions:      []uuid.UUID{promoID},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, order.ItemsPrice)
	assert.Equal(t, 10.0, order.TotalDiscount)
	assert.Equal(t, 9.0, order.TaxPrice, "tax applies to the discounted subtotal")
}

func TestOrderUpdateOnlyWhilePending(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)
	adminID := store.addUser(models.RoleAdmin)
	v := store.addVariant(models.Variant{RegularPrice: 50, InStock: 10, Availability: true})

	svc := newOrderService(store)
	admin := auth.Principal{UserID: adminID, Role: models.RoleAdmin}
	in := CreateOrderInput{
		UserID:          buyerID,
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	}

	order, err := svc.Create(context.Background(), admin, in)
	require.NoError(t, err)

	in.CartItems[0].Quantity = 3
	updated, err := svc.Update(context.Background(), admin, order.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.ItemsPrice)
	assert.Equal(t, 9.0, updated.TaxRate, "tax rate from creation is reused")

	store.mu.Lock()
	store.orders[order.ID].Status = models.OrderShipped
	store.mu.Unlock()

	_, err = svc.Update(context.Background(), admin, order.ID, in)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOrderGetAuthorization(t *testing.T) {
	store := newFakeStore()
	store.config = &models.AppConfig{Version: 1, Name: "store", TaxRate: 9}
	buyerID := store.addUser(models.RoleCustomer)
	strangerID := store.addUser(models.RoleCustomer)
	creatorID := store.addUser(models.RoleCreator)
	v := store.addVariant(models.Variant{RegularPrice: 50, InStock: 10, Availability: true})

	svc := newOrderService(store)
	buyer := auth.Principal{UserID: buyerID, Role: models.RoleCustomer}
	order, err := svc.Create(context.Background(), buyer, CreateOrderInput{
		CartItems:       []models.LineItem{{ProductID: v.ProductID, VariantID: v.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   models.PaymentMethodCardToCard,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), buyer, order.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), auth.Principal{UserID: strangerID, Role: models.RoleCustomer}, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))

	_, err = svc.Get(context.Background(), auth.Principal{UserID: creatorID, Role: models.RoleCreator}, order.ID)
	require.NoError(t, err)
}
