package models

import (
	"time"

	"github.com/google/uuid"
)

// CardToCardAccount is one bank card from the store's pool used for manual
// Card-To-Card payments.
type CardToCardAccount struct {
	BankName   string `json:"bank_name"`
	CardNumber string `json:"card_number"`
	HolderName string `json:"holder_name"`
	Available  bool   `json:"available"`
}

// AppConfig is one append-only version of the store-wide settings. Only the
// highest version row is authoritative.
type AppConfig struct {
	ID         uuid.UUID           `json:"id"`
	Version    int                 `json:"version"`
	Name       string              `json:"name"`
	TaxRate    float64             `json:"tax_rate"`
	Currencies []string            `json:"currencies"`
	CardToCard []CardToCardAccount `json:"card_to_card,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// AvailableCards filters the Card-To-Card pool down to accounts currently
// accepting transfers.
func (c *AppConfig) AvailableCards() []CardToCardAccount {
	var cards []CardToCardAccount
	for _, card := range c.CardToCard {
		if card.Available {
			cards = append(cards, card)
		}
	}
	return cards
}
