package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/auth"
	"github.com/shopino/commerce-service/internal/models"
)

type TransactionRepo interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransactionStatus, updatedBy uuid.UUID, result *models.PaymentResult) error
	Approve(ctx context.Context, trxID uuid.UUID, lines []models.LineItem, promotionIDs []uuid.UUID, updatedBy uuid.UUID) error
}

// TransactionService drives the payment state machine:
// pending -> in-process -> waiting-for-approval -> success | failed.
// Transitions only move forward; anything else fails with
// InvalidTransactionState.
type TransactionService struct {
	transactions TransactionRepo
	orders       OrderRepo
	catalog      CatalogRepo
	config       ConfigStore
	users        UserStore
	logger       *slog.Logger

	// approvalTimeout bounds the atomic approval unit; an unconfirmed stock
	// decrement aborts and the transaction stays in waiting-for-approval.
	approvalTimeout time.Duration
}

func NewTransactionService(transactions TransactionRepo, orders OrderRepo, catalog CatalogRepo, config ConfigStore, users UserStore, logger *slog.Logger) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		transactions:    transactions,
		orders:          orders,
		catalog:         catalog,
		config:          config,
		users:           users,
		logger:          logger,
		approvalTimeout: 10 * time.Second,
	}
}

type CreateTransactionInput struct {
	OrderID     uuid.UUID `json:"order_id"`
	Description string    `json:"description"`
}

func (s *TransactionService) Create(ctx context.Context, principal auth.Principal, in CreateTransactionInput) (*models.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}
	if in.Description == "" {
		return nil, apperrors.Validation("description is required")
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}

	trx := &models.Transaction{
		ID:          uuid.New(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		CreatorID:   principal.UserID,
		UpdatedBy:   principal.UserID,
		Status:      models.TransactionPending,
		Description: in.Description,
	}
	if err := s.transactions.Create(ctx, trx); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "persist transaction", err)
	}
	return trx, nil
}

func (s *TransactionService) Get(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Transaction, error) {
	if !principal.IsCreator() {
		return nil, apperrors.Authorization("creator role required")
	}
	trx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, apperrors.NotFound("transaction not found")
	}
	return trx, nil
}

func (s *TransactionService) List(ctx context.Context, principal auth.Principal, status models.TransactionStatus) ([]models.Transaction, error) {
	if !principal.IsCreator() {
		return nil, apperrors.Authorization("creator role required")
	}
	return s.transactions.List(ctx, status)
}

// StartPaymentProcess moves pending -> in-process. The linked order must
// exist and its stock is re-validated; on success the currently available
// Card-To-Card accounts are returned and the buyer is notified.
func (s *TransactionService) StartPaymentProcess(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Transaction, []models.CardToCardAccount, error) {
	if !principal.IsAdmin() {
		return nil, nil, apperrors.Authorization("admin role required")
	}

	trx, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, nil, err
	}
	if trx.Status != models.TransactionPending {
		return nil, nil, apperrors.InvalidTransactionState(string(trx.Status), string(models.TransactionInProcess))
	}

	order, err := s.orders.GetByID(ctx, trx.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, apperrors.NotFound("order not found")
	}

	if err := s.revalidateStock(ctx, order); err != nil {
		return nil, nil, err
	}

	cfg, err := s.config.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, apperrors.New(apperrors.KindInternal, "no app config available")
	}

	if err := s.transactions.UpdateStatus(ctx, trx.ID, models.TransactionPending, models.TransactionInProcess, principal.UserID, nil); err != nil {
		return nil, nil, err
	}
	trx.Status = models.TransactionInProcess
	trx.UpdatedBy = principal.UserID

	s.notify(trx.UserID, "Payment", "Your payment is being processed.")
	return trx, cfg.AvailableCards(), nil
}

// SubmitPaymentResult records buyer-submitted transfer proof and moves the
// transaction to waiting-for-approval. Resubmission from
// waiting-for-approval overwrites the previous result. Only the
// Card-To-Card method accepts a manual payment result.
func (s *TransactionService) SubmitPaymentResult(ctx context.Context, principal auth.Principal, id uuid.UUID, result models.PaymentResult) (*models.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}
	if result.ReferenceID == "" {
		return nil, apperrors.Validation("payment result reference id is required")
	}

	trx, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if trx.Status != models.TransactionInProcess && trx.Status != models.TransactionWaitingForApproval {
		return nil, apperrors.InvalidTransactionState(string(trx.Status), string(models.TransactionWaitingForApproval))
	}

	order, err := s.orders.GetByID(ctx, trx.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.PaymentMethod != models.PaymentMethodCardToCard {
		return nil, apperrors.UnsupportedPaymentMethod(order.PaymentMethod)
	}

	// Time has passed since order placement; check stock again before
	// letting the payment advance.
	if err := s.revalidateStock(ctx, order); err != nil {
		return nil, err
	}

	if err := s.transactions.UpdateStatus(ctx, trx.ID, trx.Status, models.TransactionWaitingForApproval, principal.UserID, &result); err != nil {
		return nil, err
	}
	trx.Status = models.TransactionWaitingForApproval
	trx.UpdatedBy = principal.UserID
	trx.PaymentResult = &result
	return trx, nil
}

// ApprovePayment moves waiting-for-approval -> success. The stock
// decrement, promotion usage consumption and status flip happen in one
// atomic unit bounded by approvalTimeout; any failure leaves the
// transaction in waiting-for-approval with nothing committed.
func (s *TransactionService) ApprovePayment(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}

	trx, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if trx.Status != models.TransactionWaitingForApproval {
		return nil, apperrors.InvalidTransactionState(string(trx.Status), string(models.TransactionSuccess))
	}

	order, err := s.orders.GetByID(ctx, trx.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}

	approvalCtx, cancel := context.WithTimeout(ctx, s.approvalTimeout)
	defer cancel()

	if err := s.transactions.Approve(approvalCtx, trx.ID, order.Lines(), order.Promotions, principal.UserID); err != nil {
		return nil, err
	}
	trx.Status = models.TransactionSuccess
	trx.UpdatedBy = principal.UserID

	if err := s.orders.SetStatus(ctx, order.ID, models.OrderProcessing, principal.UserID); err != nil {
		// The payment is committed; a failed fulfillment-status update is
		// recoverable and must not fail the approval.
		s.logger.Error("set order status after approval",
			slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}

	s.notify(trx.UserID, "Payment", "Your payment was approved.")
	return trx, nil
}

// RejectPayment moves any non-terminal state to failed. Nothing was ever
// committed to stock, so there is no side effect to unwind.
func (s *TransactionService) RejectPayment(ctx context.Context, principal auth.Principal, id uuid.UUID) (*models.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.Authorization("admin role required")
	}

	trx, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if trx.Status.Terminal() {
		return nil, apperrors.InvalidTransactionState(string(trx.Status), string(models.TransactionFailed))
	}

	if err := s.transactions.UpdateStatus(ctx, trx.ID, trx.Status, models.TransactionFailed, principal.UserID, nil); err != nil {
		return nil, err
	}
	trx.Status = models.TransactionFailed
	trx.UpdatedBy = principal.UserID

	s.notify(trx.UserID, "Payment", "Your payment was rejected.")
	return trx, nil
}

func (s *TransactionService) revalidateStock(ctx context.Context, order *models.Order) error {
	lines := order.Lines()
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	catalog, err := s.catalog.ResolveVariants(ctx, ids)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "resolve catalog", err)
	}
	return CheckInStock(lines, catalog)
}

// notify is fire-and-forget: notification delivery never blocks or fails a
// payment transition.
func (s *TransactionService) notify(userID uuid.UUID, title, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.users.Notify(ctx, userID, title, message); err != nil {
			s.logger.Error("notify user",
				slog.String("user_id", userID.String()), slog.Any("error", err))
		}
	}()
}
