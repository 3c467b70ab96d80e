package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopino/commerce-service/internal/cache"
	"github.com/shopino/commerce-service/internal/models"
)

// ConfigRepo reads and appends app-config versions. Config is append-only:
// a new version is inserted, never mutated, and only the highest version is
// served.
type ConfigRepo struct {
	db    *sql.DB
	cache *cache.ConfigCache
}

func NewConfigRepo(db *sql.DB, c *cache.ConfigCache) *ConfigRepo {
	return &ConfigRepo{db: db, cache: c}
}

func (r *ConfigRepo) Latest(ctx context.Context) (*models.AppConfig, error) {
	if r.cache != nil {
		if cfg, ok := r.cache.Get(); ok {
			return cfg, nil
		}
	}

	query := `
		SELECT id, version, name, tax_rate, currencies, created_at
		FROM app_config
		ORDER BY version DESC
		LIMIT 1
	`
	var cfg models.AppConfig
	var currencies pq.StringArray
	err := r.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.Version, &cfg.Name, &cfg.TaxRate, &currencies, &cfg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest config: %w", err)
	}
	cfg.Currencies = currencies

	rows, err := r.db.QueryContext(ctx,
		`SELECT bank_name, card_number, holder_name, available FROM card_to_card_accounts WHERE config_id = $1`,
		cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("get card accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var card models.CardToCardAccount
		if err := rows.Scan(&card.BankName, &card.CardNumber, &card.HolderName, &card.Available); err != nil {
			return nil, fmt.Errorf("scan card account: %w", err)
		}
		cfg.CardToCard = append(cfg.CardToCard, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get card accounts: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(&cfg)
	}
	return &cfg, nil
}

// Append inserts cfg as the next version. The version number is assigned
// inside the transaction so concurrent appends cannot collide.
func (r *ConfigRepo) Append(ctx context.Context, cfg *models.AppConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg.ID = uuid.New()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO app_config (id, version, name, tax_rate, currencies, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM app_config), $2, $3, $4, NOW())
		RETURNING version
	`, cfg.ID, cfg.Name, cfg.TaxRate, pq.Array(cfg.Currencies)).Scan(&cfg.Version)
	if err != nil {
		return fmt.Errorf("insert config: %w", err)
	}

	stmt := `
		INSERT INTO card_to_card_accounts (config_id, bank_name, card_number, holder_name, available)
		VALUES ($1,$2,$3,$4,$5)
	`
	for _, card := range cfg.CardToCard {
		if _, err := tx.ExecContext(ctx, stmt, cfg.ID, card.BankName, card.CardNumber, card.HolderName, card.Available); err != nil {
			return fmt.Errorf("insert card account: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit config: %w", err)
	}

	if r.cache != nil {
		r.cache.Invalidate()
	}
	return nil
}
