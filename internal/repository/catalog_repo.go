package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopino/commerce-service/internal/models"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// ResolveVariants fetches the live variant rows for the requested ids in one
// batched query. Missing ids are simply absent from the result map; the
// caller decides whether that is fatal.
func (r *CatalogRepo) ResolveVariants(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error) {
	ids := make([]string, 0, len(variantIDs))
	for _, id := range variantIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT id, product_id, sku, regular_price, discounted_price,
		       in_stock, sold_amount, availability
		FROM variants
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve variants: %w", err)
	}
	defer rows.Close()

	catalog := make(map[uuid.UUID]models.Variant, len(variantIDs))
	for rows.Next() {
		var v models.Variant
		var discounted sql.NullFloat64
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.SKU,
			&v.RegularPrice,
			&discounted,
			&v.InStock,
			&v.SoldAmount,
			&v.Availability,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if discounted.Valid {
			v.DiscountedPrice = &discounted.Float64
		}
		catalog[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve variants: %w", err)
	}
	return catalog, nil
}
