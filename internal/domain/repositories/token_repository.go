package repositories

import (
	"context"

	"spot-deposits.backend/internal/domain/entities"
)

// TokenRepository is the read-only token registry
type TokenRepository interface {
	// GetActiveByCurrency returns the active tokens for a currency, one per chain
	GetActiveByCurrency(ctx context.Context, currency string) ([]*entities.Token, error)

	// Get returns the token for (chain, currency), or ErrNotFound
	Get(ctx context.Context, chain, currency string) (*entities.Token, error)
}
