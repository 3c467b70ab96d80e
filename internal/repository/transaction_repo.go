package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/models"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, order_id, user_id, creator_id, updated_by, status, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.OrderID, t.UserID, t.CreatorID, t.UpdatedBy, t.Status, t.Description)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `
		SELECT id, order_id, user_id, creator_id, COALESCE(updated_by, creator_id),
		       status, description, payment_result, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`
	var t models.Transaction
	var paymentResult []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.OrderID, &t.UserID, &t.CreatorID, &t.UpdatedBy,
		&t.Status, &t.Description, &paymentResult, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if len(paymentResult) > 0 {
		var pr models.PaymentResult
		if err := json.Unmarshal(paymentResult, &pr); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
		t.PaymentResult = &pr
	}
	return &t, nil
}

func (r *TransactionRepo) List(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error) {
	query := `
		SELECT id, order_id, user_id, creator_id, COALESCE(updated_by, creator_id),
		       status, description, created_at, updated_at
		FROM transactions
	`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.UserID, &t.CreatorID, &t.UpdatedBy,
			&t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UpdateStatus moves the transaction from exactly the given state to the
// next one. The conditional WHERE makes concurrent transitions race-safe:
// whichever update lands second affects zero rows and fails with
// InvalidTransactionState.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransactionStatus, updatedBy uuid.UUID, result *models.PaymentResult) error {
	var resultJSON any
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode payment result: %w", err)
		}
		resultJSON = b
	}

	query := `
		UPDATE transactions
		SET status = $3,
		    updated_by = $4,
		    payment_result = COALESCE($5, payment_result),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from, to, updatedBy, resultJSON)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		cur, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperrors.NotFound("transaction not found")
		}
		return apperrors.InvalidTransactionState(string(cur.Status), string(to))
	}
	return nil
}

// Approve finishes a payment: it flips the transaction from
// waiting-for-approval to success, decrements stock for every order line
// and consumes one use from each capped promotion, all inside a single
// database transaction. A conditional decrement per variant guarantees
// in_stock never goes negative no matter how many approvals race; if any
// line cannot be satisfied the whole transaction rolls back and the
// payment stays in waiting-for-approval.
func (r *TransactionRepo) Approve(ctx context.Context, trxID uuid.UUID, lines []models.LineItem, promotionIDs []uuid.UUID, updatedBy uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	flip := `
		UPDATE transactions
		SET status = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`
	res, err := tx.ExecContext(ctx, flip, trxID, models.TransactionSuccess, updatedBy, models.TransactionWaitingForApproval)
	if err != nil {
		return fmt.Errorf("mark transaction success: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		cur, err := r.GetByID(ctx, trxID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperrors.NotFound("transaction not found")
		}
		return apperrors.InvalidTransactionState(string(cur.Status), string(models.TransactionSuccess))
	}

	decrement := `
		UPDATE variants
		SET in_stock = in_stock - $2,
		    sold_amount = sold_amount + $2
		WHERE id = $1 AND in_stock >= $2 AND availability = TRUE
	`
	for _, line := range lines {
		res, err := tx.ExecContext(ctx, decrement, line.VariantID, line.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.InsufficientStock(line.ProductID)
		}
	}

	for _, pid := range promotionIDs {
		if err := consumePromotionUsage(ctx, tx, pid); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval: %w", err)
	}
	return nil
}

// consumePromotionUsage locks the promotion row and spends one use when the
// promotion is capped, rejecting once the cap is exhausted.
func consumePromotionUsage(ctx context.Context, tx *sql.Tx, promotionID uuid.UUID) error {
	var isCapped bool
	var timesUsed, maxTimes int
	err := tx.QueryRowContext(ctx,
		`SELECT is_capped, times_used, max_times_to_use FROM promotions WHERE id = $1 FOR UPDATE`,
		promotionID).Scan(&isCapped, &timesUsed, &maxTimes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("promotion not found")
		}
		return fmt.Errorf("lock promotion usage: %w", err)
	}

	if isCapped && timesUsed >= maxTimes {
		return apperrors.Validation("promotion usage cap reached")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE promotions SET times_used = times_used + 1, updated_at = NOW() WHERE id = $1`,
		promotionID)
	if err != nil {
		return fmt.Errorf("increment promotion usage: %w", err)
	}
	return nil
}
