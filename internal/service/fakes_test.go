package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/apperrors"
	"github.com/shopino/commerce-service/internal/models"
)

// The fakes share one mutex, playing the role the database transaction
// plays in production: everything inside Approve happens atomically or not
// at all.

type fakeStore struct {
	mu            sync.Mutex
	variants      map[uuid.UUID]models.Variant
	orders        map[uuid.UUID]*models.Order
	transactions  map[uuid.UUID]*models.Transaction
	promotions    map[uuid.UUID]*models.Promotion
	config        *models.AppConfig
	users         map[uuid.UUID]*models.User
	notifications []models.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		variants:     make(map[uuid.UUID]models.Variant),
		orders:       make(map[uuid.UUID]*models.Order),
		transactions: make(map[uuid.UUID]*models.Transaction),
		promotions:   make(map[uuid.UUID]*models.Promotion),
		users:        make(map[uuid.UUID]*models.User),
	}
}

func (s *fakeStore) addUser(role string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &models.User{ID: id, Username: "u-" + id.String()[:8], Role: role}
	return id
}

func (s *fakeStore) addVariant(v models.Variant) models.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.ProductID == uuid.Nil {
		v.ProductID = uuid.New()
	}
	s.variants[v.ID] = v
	return v
}

// --- CatalogRepo ---

type fakeCatalog struct{ store *fakeStore }

func (f *fakeCatalog) ResolveVariants(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Variant, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make(map[uuid.UUID]models.Variant, len(ids))
	for _, id := range ids {
		if v, ok := f.store.variants[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// --- OrderRepo ---

type fakeOrders struct{ store *fakeStore }

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *o
	f.store.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	o, ok := f.store.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []models.Order
	for _, o := range f.store.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]models.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []models.Order
	for _, o := range f.store.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) Update(_ context.Context, o *models.Order) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *o
	f.store.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) SetStatus(_ context.Context, id uuid.UUID, status models.OrderStatus, updatedBy uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	o, ok := f.store.orders[id]
	if !ok {
		return apperrors.NotFound("order not found")
	}
	o.Status = status
	o.UpdatedBy = updatedBy
	return nil
}

// --- TransactionRepo ---

type fakeTransactions struct{ store *fakeStore }

func (f *fakeTransactions) Create(_ context.Context, t *models.Transaction) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *t
	f.store.transactions[t.ID] = &cp
	return nil
}

func (f *fakeTransactions) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTransactions) List(_ context.Context, status models.TransactionStatus) ([]models.Transaction, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.store.transactions {
		if status == "" || t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.TransactionStatus, updatedBy uuid.UUID, result *models.PaymentResult) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	t, ok := f.store.transactions[id]
	if !ok {
		return apperrors.NotFound("transaction not found")
	}
	if t.Status != from {
		return apperrors.InvalidTransactionState(string(t.Status), string(to))
	}
	t.Status = to
	t.UpdatedBy = updatedBy
	if result != nil {
		cp := *result
		t.PaymentResult = &cp
	}
	return nil
}

func (f *fakeTransactions) Approve(_ context.Context, trxID uuid.UUID, lines []models.LineItem, promotionIDs []uuid.UUID, updatedBy uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	t, ok := f.store.transactions[trxID]
	if !ok {
		return apperrors.NotFound("transaction not found")
	}
	if t.Status != models.TransactionWaitingForApproval {
		return apperrors.InvalidTransactionState(string(t.Status), string(models.TransactionSuccess))
	}

	// validate everything before committing anything
	for _, line := range lines {
		v, ok := f.store.variants[line.VariantID]
		if !ok || line.Quantity > v.InStock || !v.Availability {
			return apperrors.InsufficientStock(line.ProductID)
		}
	}
	for _, pid := range promotionIDs {
		p, ok := f.store.promotions[pid]
		if !ok {
			return apperrors.NotFound("promotion not found")
		}
		if p.UsageCap.IsCapped && p.UsageCap.TimesUsed >= p.UsageCap.MaxTimesToUse {
			return apperrors.Validation("promotion usage cap reached")
		}
	}

	for _, line := range lines {
		v := f.store.variants[line.VariantID]
		v.InStock -= line.Quantity
		v.SoldAmount += line.Quantity
		f.store.variants[line.VariantID] = v
	}
	for _, pid := range promotionIDs {
		f.store.promotions[pid].UsageCap.TimesUsed++
	}
	t.Status = models.TransactionSuccess
	t.UpdatedBy = updatedBy
	return nil
}

// --- PromotionStore / PromotionRepo ---

type fakePromotions struct{ store *fakeStore }

func (f *fakePromotions) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Promotion, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make(map[uuid.UUID]models.Promotion, len(ids))
	for _, id := range ids {
		if p, ok := f.store.promotions[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (f *fakePromotions) GetByID(_ context.Context, id uuid.UUID) (*models.Promotion, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.promotions[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePromotions) List(_ context.Context, activeOnly bool) ([]models.Promotion, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []models.Promotion
	for _, p := range f.store.promotions {
		if !activeOnly || p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePromotions) Create(_ context.Context, p *models.Promotion) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *p
	f.store.promotions[p.ID] = &cp
	return nil
}

func (f *fakePromotions) Update(_ context.Context, p *models.Promotion) error {
	return f.Create(context.Background(), p)
}

func (f *fakePromotions) Delete(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	delete(f.store.promotions, id)
	return nil
}

// --- ConfigStore ---

type fakeConfig struct{ store *fakeStore }

func (f *fakeConfig) Latest(_ context.Context) (*models.AppConfig, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if f.store.config == nil {
		return nil, nil
	}
	cp := *f.store.config
	return &cp, nil
}

// --- UserStore ---

type fakeUsers struct{ store *fakeStore }

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	u, ok := f.store.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Notify(_ context.Context, userID uuid.UUID, title, message string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.notifications = append(f.store.notifications, models.Notification{
		ID: uuid.New(), UserID: userID, Title: title, Message: message,
	})
	return nil
}
