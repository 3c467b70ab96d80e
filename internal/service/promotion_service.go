package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
)

type PromotionRepo interface {
	PromotionStore
	GetByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context, activeOnly bool) ([]models.Promotion, error)
	Create(ctx context.Context, p *models.Promotion) error
	Update(ctx context.Context, p *models.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PromotionService struct {
	promotions PromotionRepo
}

func NewPromotionService(promotions PromotionRepo) *PromotionService {
	return &PromotionService{promotions: promotions}
}

type PromotionInput struct {
	PromotionIdentifier string                     `json:"promotion_identifier"`
	Description         string                     `json:"description"`
	Active              bool                       `json:"active"`
	ActiveFrom          time.Time                  `json:"active_from"`
	ActiveUntil         time.Time                  `json:"active_until"`
	ApplicableProducts  []models.ApplicableProduct `json:"applicable_products,omitempty"`
	AccessibleRoles     []string                   `json:"accessible_roles,omitempty"`
	MinTotalOrder       models.PriceGate           `json:"min_total_order"`
	MaximumDiscount     models.PriceGate           `json:"maximum_discount"`
	PercentageDiscount  models.PercentageDiscount  `json:"percentage_discount"`
	FixedDiscount       models.PriceGate           `json:"fixed_discount"`
	UsageCap            models.UsageCap            `json:"usage_cap"`
}

func (in *PromotionInput) validate() error {
	if in.PromotionIdentifier == "" {
		return apperrors.Validation("promotion_identifier is required")
	}
	if in.Description == "" {
		return apperrors.Validation("description is required")
	}
	if !in.ActiveUntil.After(in.ActiveFrom) {
		return apperrors.Validation("active_until must be after active_from")
	}
	if in.PercentageDiscount.Percentage >= 100 || in.PercentageDiscount.Percentage < 0 {
		return apperrors.Validation("percentage must be between 0 and 100")
	}
	if in.FixedDiscount.Price < 0 || in.MaximumDiscount.Price < 0 || in.MinTotalOrder.Price < 0 {
		return apperrors.Validation("discount amounts must not be negative")
	}
	if in.UsageCap.IsCapped && in.UsageCap.MaxTimesToUse <= 0 {
		return apperrors.Validation("capped promotions need a positive max_times_to_use")
	}
	for _, ap := range in.ApplicableProducts {
		if ap.Quantity <= 0 {
			return apperrors.Validation("applicable product quantity must be positive")
		}
	}
	return nil
}

func (s *PromotionService) Create(ctx context.Context, principal auth.Principal, in PromotionInput) (*models.Promotion, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Promotion{
		ID:                  uuid.New(),
		PromotionIdentifier: in.PromotionIdentifier,
		Description:         in.Description,
		Active:              in.Active,
		ActiveFrom:          in.ActiveFrom,
		ActiveUntil:         in.ActiveUntil,
		ApplicableProducts:  in.ApplicableProducts,
		AccessibleRoles:     in.AccessibleRoles,
		MinTotalOrder:       in.MinTotalOrder,
		MaximumDiscount:     in.MaximumDiscount,
		PercentageDiscount:  in.PercentageDiscount,
		FixedDiscount:       in.FixedDiscount,
		UsageCap: models.UsageCap{
			IsCapped:      in.UsageCap.IsCapped,
			MaxTimesToUse: in.UsageCap.MaxTimesToUse,
		},
		CreatorID: principal.UserID,
	}
	if err := s.promotions.Create(ctx, p); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "persist promotion", err)
	}
	return p, nil
}

func (s *PromotionService) Update(ctx context.Context, principal auth.Principal, id uuid.UUID, in PromotionInput) (*models.Promotion, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("promotion not found")
	}

	p.PromotionIdentifier = in.PromotionIdentifier
	p.Description = in.Description
	p.Active = in.Active
	p.ActiveFrom = in.ActiveFrom
	p.ActiveUntil = in.ActiveUntil
	p.ApplicableProducts = in.ApplicableProducts
	p.AccessibleRoles = in.AccessibleRoles
	p.MinTotalOrder = in.MinTotalOrder
	p.MaximumDiscount = in.MaximumDiscount
	p.PercentageDiscount = in.PercentageDiscount
	p.FixedDiscount = in.FixedDiscount
	p.UsageCap.IsCapped = in.UsageCap.IsCapped
	p.UsageCap.MaxTimesToUse = in.UsageCap.MaxTimesToUse

	if err := s.promotions.Update(ctx, p); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "persist promotion update", err)
	}
	return p, nil
}

func (s *PromotionService) Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return apperrors.Authorization("admin role required")
	}
	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperrors.NotFound("promotion not found")
	}
	if err := s.promotions.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "delete promotion", err)
	}
	return nil
}

func (s *PromotionService) Get(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Promotion, error) {
	if !principal.IsCreator() {
		return nil, apperrors.Authorization("creator role required")
	}
	p, err := s.promotions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("promotion not found")
	}
	return p, nil
}

func (s *PromotionService) List(ctx context.Context, principal auth.Principal, activeOnly bool) ([]models.Promotion, error) {
	if !principal.IsCreator() {
		return nil, apperrors.Authorization("creator role required")
	}
	return s.promotions.List(ctx, activeOnly)
}
