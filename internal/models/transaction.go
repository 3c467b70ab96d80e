package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionPending            TransactionStatus = "pending"
	TransactionInProcess          TransactionStatus = "in-process"
	TransactionWaitingForApproval TransactionStatus = "waiting-for-approval"
	TransactionSuccess            TransactionStatus = "success"
	TransactionFailed             TransactionStatus = "failed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionSuccess || s == TransactionFailed
}

// PaymentResult is the buyer-submitted proof of a Card-To-Card transfer.
type PaymentResult struct {
	ReferenceID string    `json:"reference_id"`
	CardNumber  string    `json:"card_number,omitempty"`
	PaidAmount  float64   `json:"paid_amount,omitempty"`
	PaidAt      time.Time `json:"paid_at,omitempty"`
}

type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       uuid.UUID         `json:"order_id"`
	UserID        uuid.UUID         `json:"user_id"`
	CreatorID     uuid.UUID         `json:"creator_id"`
	UpdatedBy     uuid.UUID         `json:"updated_by"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	PaymentResult *PaymentResult    `json:"payment_result,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
