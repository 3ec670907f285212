package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// TransactionType represents the kind of transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Transaction represents a detected on-chain transfer for a wallet.
// Deposits start PENDING and move to COMPLETED once the chain's
// confirmation threshold is reached and the wallet has been credited.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	WalletID      uuid.UUID         `json:"walletId"`
	UserID        uuid.UUID         `json:"userId"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Chain         string            `json:"chain"`
	Currency      string            `json:"currency"`
	Amount        decimal.Decimal   `json:"amount"`
	Fee           decimal.Decimal   `json:"fee"`
	TrxID         string            `json:"trxId"`   // chain-native transaction identifier
	Address       string            `json:"address"` // watched deposit address; caller-supplied for shared-address chains
	Confirmations int               `json:"confirmations"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsFinal reports whether the transaction can no longer change state
func (t *Transaction) IsFinal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
