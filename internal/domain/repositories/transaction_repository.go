package repositories

import (
	"context"

	"github.com/google/uuid"
	"spot-deposits.backend/internal/domain/entities"
)

// TransactionRepository defines deposit transaction data operations
type TransactionRepository interface {
	// Create inserts a transaction. Returns ErrAlreadyExists when a
	// transaction with the same (wallet, trxId) already exists.
	Create(ctx context.Context, trx *entities.Transaction) error

	// GetByID returns a transaction by its identifier, or ErrNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// GetByTrxID returns the transaction for a wallet's chain tx id, or ErrNotFound
	GetByTrxID(ctx context.Context, walletID uuid.UUID, trxID string) (*entities.Transaction, error)

	// UpdateConfirmations updates the observed confirmation count
	UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int) error

	// UpdateStatus moves a transaction to a new status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error

	// Complete moves a PENDING transaction to COMPLETED. Returns false
	// when the transaction is already final, so of several concurrent
	// finalizers exactly one observes the flip.
	Complete(ctx context.Context, id uuid.UUID) (bool, error)

	// ListPendingDeposits returns pending deposit transactions across all wallets
	ListPendingDeposits(ctx context.Context, limit int) ([]*entities.Transaction, error)
}
