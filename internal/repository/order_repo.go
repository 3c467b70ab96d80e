package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create persists the order together with its line items and promotion refs
// in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertOrder := `
		INSERT INTO orders
		(id, user_id, creator_id, updated_by, status, payment_method,
		 items_price, tax_rate, tax_price, total_discount,
		 receiver_name, receiver_phone, address, country, province, city,
		 postal_code, shipping_price, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())
	`
	_, err = tx.ExecContext(ctx, insertOrder,
		o.ID, o.UserID, o.CreatorID, o.UpdatedBy, o.Status, o.PaymentMethod,
		o.ItemsPrice, o.TaxRate, o.TaxPrice, o.TotalDiscount,
		o.ShippingAddress.ReceiverName, o.ShippingAddress.ReceiverPhone,
		o.ShippingAddress.Address, o.ShippingAddress.Country,
		o.ShippingAddress.Province, o.ShippingAddress.City,
		o.ShippingAddress.PostalCode, o.ShippingAddress.ShippingPrice,
		o.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price)
		VALUES ($1,$2,$3,$4,$5)
	`
	for _, it := range o.CartItems {
		if _, err := tx.ExecContext(ctx, insertItem, o.ID, it.ProductID, it.VariantID, it.Quantity, it.UnitPrice); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	insertPromo := `INSERT INTO order_promotions (order_id, promotion_id) VALUES ($1,$2)`
	for _, pid := range o.Promotions {
		if _, err := tx.ExecContext(ctx, insertPromo, o.ID, pid); err != nil {
			return fmt.Errorf("insert order promotion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, creator_id, COALESCE(updated_by, creator_id), status,
		       payment_method, items_price, tax_rate, tax_price, total_discount,
		       receiver_name, receiver_phone, address, country, province, city,
		       postal_code, shipping_price, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var o models.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.CreatorID, &o.UpdatedBy, &o.Status,
		&o.PaymentMethod, &o.ItemsPrice, &o.TaxRate, &o.TaxPrice, &o.TotalDiscount,
		&o.ShippingAddress.ReceiverName, &o.ShippingAddress.ReceiverPhone,
		&o.ShippingAddress.Address, &o.ShippingAddress.Country,
		&o.ShippingAddress.Province, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.ShippingPrice,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if o.CartItems, err = r.getItems(ctx, id); err != nil {
		return nil, err
	}
	if o.Promotions, err = r.getPromotions(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) getItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, variant_id, quantity, unit_price FROM order_items WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.VariantID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) getPromotions(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT promotion_id FROM order_promotions WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order promotions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order promotion: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, ``)
}

func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]models.Order, error) {
	query := `
		SELECT id, user_id, creator_id, COALESCE(updated_by, creator_id), status,
		       payment_method, items_price, tax_rate, tax_price, total_discount,
		       notes, created_at, updated_at
		FROM orders ` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CreatorID, &o.UpdatedBy, &o.Status,
			&o.PaymentMethod, &o.ItemsPrice, &o.TaxRate, &o.TaxPrice,
			&o.TotalDiscount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetStatus advances the fulfillment status without touching pricing.
func (r *OrderRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, updatedBy uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, status, updatedBy)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Update rewrites the mutable order fields and replaces the line items.
// The edit-only-while-pending rule is enforced by the service.
func (r *OrderRepo) Update(ctx context.Context, o *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update := `
		UPDATE orders SET
			updated_by = $2, status = $3, payment_method = $4,
			items_price = $5, tax_price = $6, total_discount = $7,
			receiver_name = $8, receiver_phone = $9, address = $10,
			country = $11, province = $12, city = $13, postal_code = $14,
			shipping_price = $15, notes = $16, updated_at = NOW()
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, update,
		o.ID, o.UpdatedBy, o.Status, o.PaymentMethod,
		o.ItemsPrice, o.TaxPrice, o.TotalDiscount,
		o.ShippingAddress.ReceiverName, o.ShippingAddress.ReceiverPhone,
		o.ShippingAddress.Address, o.ShippingAddress.Country,
		o.ShippingAddress.Province, o.ShippingAddress.City,
		o.ShippingAddress.PostalCode, o.ShippingAddress.ShippingPrice,
		o.Notes,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	insertItem := `
		INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price)
		VALUES ($1,$2,$3,$4,$5)
	`
	for _, it := range o.CartItems {
		if _, err := tx.ExecContext(ctx, insertItem, o.ID, it.ProductID, it.VariantID, it.Quantity, it.UnitPrice); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order update: %w", err)
	}
	return nil
}
