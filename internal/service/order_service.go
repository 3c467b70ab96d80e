package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
)

// Repos required by the services. Interfaces live here so tests can swap in
// in-memory fakes.

type CatalogRepo interface {
	ResolveVariants(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, updatedBy uuid.UUID) error
}

type PromotionStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Promotion, error)
}

type ConfigStore interface {
	Latest(ctx context.Context) (*models.AppConfig, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Notify(ctx context.Context, userID uuid.UUID, title, message string) error
}

type OrderService struct {
	catalog    CatalogRepo
	orders     OrderRepo
	promotions PromotionStore
	config     ConfigStore
	users      UserStore
	now        func() time.Time
}

func NewOrderService(catalog CatalogRepo, orders OrderRepo, promotions PromotionStore, config ConfigStore, users UserStore) *OrderService {
	return &OrderService{
		catalog:    catalog,
		orders:     orders,
		promotions: promotions,
		config:     config,
		users:      users,
		now:        time.Now,
	}
}

type CreateOrderInput struct {
	UserID          uuid.UUID              `json:"user_id"`
	CartItems       []models.LineItem      `json:"cart_items"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	Promotions      []uuid.UUID            `json:"promotions,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
}

func (in *CreateOrderInput) validate() error {
	if len(in.CartItems) == 0 {
		return apperrors.Validation("cart is empty")
	}
	for _, line := range in.CartItems {
		if line.Quantity <= 0 {
			return apperrors.Validation("line item quantity must be positive")
		}
		if line.ProductID == uuid.Nil || line.VariantID == uuid.Nil {
			return apperrors.Validation("line item is missing product or variant id")
		}
	}
	if in.PaymentMethod != models.PaymentMethodCardToCard {
		return apperrors.UnsupportedPaymentMethod(in.PaymentMethod)
	}
	if in.ShippingAddress.ReceiverName == "" || in.ShippingAddress.Address == "" {
		return apperrors.Validation("shipping address is incomplete")
	}
	return nil
}

// Create builds and persists an order. Totals are always computed
// server-side from the live catalog; the tax rate is read from the latest
// app config exactly once and snapshotted onto the order.
func (s *OrderService) Create(ctx context.Context, principal auth.Principal, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == uuid.Nil {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.Authorization("only admins may create orders on behalf of another user")
	}
	if len(in.Promotions) > 0 && !principal.IsAdmin() {
		return nil, apperrors.Authorization("only admins may attach promotions")
	}

	buyer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, apperrors.NotFound("user not found")
	}

	catalog, err := s.resolveCatalog(ctx, in.CartItems)
	if err != nil {
		return nil, err
	}
	if err := CheckInStock(in.CartItems, catalog); err != nil {
		return nil, err
	}

	itemsPrice, err := ComputeItemsPrice(in.CartItems, catalog)
	if err != nil {
		return nil, err
	}

	totalDiscount, err := s.totalDiscount(ctx, in.Promotions, in.CartItems, itemsPrice, buyer.Role)
	if err != nil {
		return nil, err
	}

	cfg, err := s.config.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.New(apperrors.KindInternal, "no app config available")
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CreatorID:       principal.UserID,
		UpdatedBy:       principal.UserID,
		Status:          models.OrderPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      itemsPrice,
		TaxRate:         cfg.TaxRate,
		TaxPrice:        ComputeTax(itemsPrice, totalDiscount, cfg.TaxRate),
		Promotions:      in.Promotions,
		TotalDiscount:   totalDiscount,
		Notes:           in.Notes,
	}
	for _, line := range in.CartItems {
		order.CartItems = append(order.CartItems, models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: catalog[line.VariantID].UnitPrice(),
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "persist order", err)
	}
	return order, nil
}

// Update edits an order in place. Only pending orders are editable; the
// tax rate captured at creation is reused, never re-read from config.
func (s *OrderService) Update(ctx context.Context, principal auth.Principal, id uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.Status != models.OrderPending {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"order is %s; only pending orders can be edited", order.Status)
	}

	catalog, err := s.resolveCatalog(ctx, in.CartItems)
	if err != nil {
		return nil, err
	}
	if err := CheckInStock(in.CartItems, catalog); err != nil {
		return nil, err
	}
	itemsPrice, err := ComputeItemsPrice(in.CartItems, catalog)
	if err != nil {
		return nil, err
	}

	buyer, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, apperrors.NotFound("user not found")
	}
	totalDiscount, err := s.totalDiscount(ctx, order.Promotions, in.CartItems, itemsPrice, buyer.Role)
	if err != nil {
		return nil, err
	}

	order.UpdatedBy = principal.UserID
	order.ShippingAddress = in.ShippingAddress
	order.PaymentMethod = in.PaymentMethod
	order.ItemsPrice = itemsPrice
	order.TotalDiscount = totalDiscount
	order.TaxPrice = ComputeTax(itemsPrice, totalDiscount, order.TaxRate)
	order.Notes = in.Notes
	order.CartItems = order.CartItems[:0]
	for _, line := range in.CartItems {
		order.CartItems = append(order.CartItems, models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: catalog[line.VariantID].UnitPrice(),
		})
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "persist order update", err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.UserID != principal.UserID && !principal.IsCreator() {
		return nil, apperrors.Authorization("not allowed to view this order")
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, principal auth.Principal) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, principal.UserID)
}

func (s *OrderService) ListAll(ctx context.Context, principal auth.Principal) ([]models.Order, error) {
	if !principal.IsCreator() {
		return nil, apperrors.Authorization("creator role required")
	}
	return s.orders.ListAll(ctx)
}

func (s *OrderService) resolveCatalog(ctx context.Context, lines []models.LineItem) (Catalog, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	catalog, err := s.catalog.ResolveVariants(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "resolve catalog", err)
	}
	if err := ResolveLines(lines, catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// totalDiscount applies each promotion to the running discounted subtotal
// and sums the contributions.
func (s *OrderService) totalDiscount(ctx context.Context, promotionIDs []uuid.UUID, lines []models.LineItem, itemsPrice float64, buyerRole string) (float64, error) {
	if len(promotionIDs) == 0 {
		return 0, nil
	}
	promos, err := s.promotions.GetByIDs(ctx, promotionIDs)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "load promotions", err)
	}

	now := s.now()
	var total float64
	for _, pid := range promotionIDs {
		p, ok := promos[pid]
		if !ok {
			return 0, apperrors.NotFound(fmt.Sprintf("promotion %s not found", pid))
		}
		d, err := PromotionDiscount(ctx, p, lines, itemsPrice-total, buyerRole, now)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}
