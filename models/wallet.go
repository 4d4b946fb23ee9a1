package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionRejected TransactionStatus = "rejected"
)

type WalletTransaction struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	TransactionType      TransactionType   `json:"transaction_type"`
	Amount               decimal.Decimal   `json:"amount"`
	Status               TransactionStatus `json:"status"`
	PaymentMethod        *string           `json:"payment_method,omitempty"`
	TransactionReference *string           `json:"transaction_reference,omitempty"`
	AdminNotes           *string           `json:"admin_notes,omitempty"`
	ApprovedBy           *string           `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time        `json:"approved_at,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

type WalletBalance struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}
