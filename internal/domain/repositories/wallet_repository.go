package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"spot-deposits.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations.
// Implementations decode the persisted address field into a structured
// map exactly once, at this boundary; callers never see serialized text.
type WalletRepository interface {
	// Find returns the wallet for (userID, currency, walletType), or ErrNotFound
	Find(ctx context.Context, userID uuid.UUID, currency string, walletType entities.WalletType) (*entities.Wallet, error)

	// GetByID returns a wallet by its identifier, or ErrNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)

	// Create inserts a new wallet. Returns ErrAlreadyExists when a wallet
	// for the same (user, currency, type) already exists.
	Create(ctx context.Context, wallet *entities.Wallet) error

	// UpdateAddresses replaces the wallet's stored address map
	UpdateAddresses(ctx context.Context, walletID uuid.UUID, addresses map[string]entities.DepositAddress) error

	// AddBalance atomically adds amount to the wallet's balance
	AddBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
}
