package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopino/commerce-service/internal/models"
)

type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo {
	return &PromotionRepo{db: db}
}

const promotionColumns = `
	id, promotion_identifier, description, active, active_from, active_until,
	accessible_roles, min_total_active, min_total_price,
	max_discount_active, max_discount_price,
	is_capped, times_used, max_times_to_use,
	percentage_active, percentage, fixed_active, fixed_price,
	creator_id, created_at, updated_at
`

func scanPromotion(row interface{ Scan(...any) error }) (*models.Promotion, error) {
	var p models.Promotion
	var roles pq.StringArray
	err := row.Scan(
		&p.ID, &p.PromotionIdentifier, &p.Description, &p.Active,
		&p.ActiveFrom, &p.ActiveUntil, &roles,
		&p.MinTotalOrder.Active, &p.MinTotalOrder.Price,
		&p.MaximumDiscount.Active, &p.MaximumDiscount.Price,
		&p.UsageCap.IsCapped, &p.UsageCap.TimesUsed, &p.UsageCap.MaxTimesToUse,
		&p.PercentageDiscount.Active, &p.PercentageDiscount.Percentage,
		&p.FixedDiscount.Active, &p.FixedDiscount.Price,
		&p.CreatorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.AccessibleRoles = roles
	return &p, nil
}

func (r *PromotionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
	p, err := scanPromotion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if p.ApplicableProducts, err = r.getApplicableProducts(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIDs resolves a set of promotions; any missing id leaves a hole the
// caller must treat as NotFound.
func (r *PromotionRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Promotion, error) {
	out := make(map[uuid.UUID]models.Promotion, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out[id] = *p
		}
	}
	return out, nil
}

func (r *PromotionRepo) getApplicableProducts(ctx context.Context, promotionID uuid.UUID) ([]models.ApplicableProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, variant_id, quantity FROM promotion_products WHERE promotion_id = $1`,
		promotionID)
	if err != nil {
		return nil, fmt.Errorf("get applicable products: %w", err)
	}
	defer rows.Close()

	var products []models.ApplicableProduct
	for rows.Next() {
		var ap models.ApplicableProduct
		if err := rows.Scan(&ap.ProductID, &ap.VariantID, &ap.Quantity); err != nil {
			return nil, fmt.Errorf("scan applicable product: %w", err)
		}
		products = append(products, ap)
	}
	return products, rows.Err()
}

func (r *PromotionRepo) List(ctx context.Context, activeOnly bool) ([]models.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var promotions []models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promotions = append(promotions, *p)
	}
	return promotions, rows.Err()
}

func (r *PromotionRepo) Create(ctx context.Context, p *models.Promotion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO promotions
		(id, promotion_identifier, description, active, active_from, active_until,
		 accessible_roles, min_total_active, min_total_price,
		 max_discount_active, max_discount_price,
		 is_capped, times_used, max_times_to_use,
		 percentage_active, percentage, fixed_active, fixed_price,
		 creator_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())
	`
	_, err = tx.ExecContext(ctx, insert,
		p.ID, p.PromotionIdentifier, p.Description, p.Active,
		p.ActiveFrom, p.ActiveUntil, pq.Array(p.AccessibleRoles),
		p.MinTotalOrder.Active, p.MinTotalOrder.Price,
		p.MaximumDiscount.Active, p.MaximumDiscount.Price,
		p.UsageCap.IsCapped, p.UsageCap.TimesUsed, p.UsageCap.MaxTimesToUse,
		p.PercentageDiscount.Active, p.PercentageDiscount.Percentage,
		p.FixedDiscount.Active, p.FixedDiscount.Price,
		p.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}

	if err := insertApplicableProducts(ctx, tx, p.ID, p.ApplicableProducts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promotion: %w", err)
	}
	return nil
}

func (r *PromotionRepo) Update(ctx context.Context, p *models.Promotion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update := `
		UPDATE promotions SET
			promotion_identifier = $2, description = $3, active = $4,
			active_from = $5, active_until = $6, accessible_roles = $7,
			min_total_active = $8, min_total_price = $9,
			max_discount_active = $10, max_discount_price = $11,
			is_capped = $12, max_times_to_use = $13,
			percentage_active = $14, percentage = $15,
			fixed_active = $16, fixed_price = $17,
			updated_at = NOW()
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, update,
		p.ID, p.PromotionIdentifier, p.Description, p.Active,
		p.ActiveFrom, p.ActiveUntil, pq.Array(p.AccessibleRoles),
		p.MinTotalOrder.Active, p.MinTotalOrder.Price,
		p.MaximumDiscount.Active, p.MaximumDiscount.Price,
		p.UsageCap.IsCapped, p.UsageCap.MaxTimesToUse,
		p.PercentageDiscount.Active, p.PercentageDiscount.Percentage,
		p.FixedDiscount.Active, p.FixedDiscount.Price,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_products WHERE promotion_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear applicable products: %w", err)
	}
	if err := insertApplicableProducts(ctx, tx, p.ID, p.ApplicableProducts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promotion update: %w", err)
	}
	return nil
}

func (r *PromotionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertApplicableProducts(ctx context.Context, tx *sql.Tx, promotionID uuid.UUID, products []models.ApplicableProduct) error {
	stmt := `INSERT INTO promotion_products (promotion_id, product_id, variant_id, quantity) VALUES ($1,$2,$3,$4)`
	for _, ap := range products {
		if _, err := tx.ExecContext(ctx, stmt, promotionID, ap.ProductID, ap.VariantID, ap.Quantity); err != nil {
			return fmt.Errorf("insert applicable product: %w", err)
		}
	}
	return nil
}
