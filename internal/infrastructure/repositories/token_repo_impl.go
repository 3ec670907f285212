package repositories

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/infrastructure/models"
)

// TokenRepository implements the read-only token registry on GORM
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetActiveByCurrency returns the active tokens for a currency
func (r *TokenRepository) GetActiveByCurrency(ctx context.Context, currency string) ([]*entities.Token, error) {
	var ms []models.Token
	err := r.db.WithContext(ctx).
		Where("currency = ? AND status = ?", currency, true).
		Order("chain").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	var tokens []*entities.Token
	for _, m := range ms {
		model := m
		tokens = append(tokens, r.toEntity(&model))
	}
	return tokens, nil
}

// Get returns the token for (chain, currency)
func (r *TokenRepository) Get(ctx context.Context, chain, currency string) (*entities.Token, error) {
	var m models.Token
	err := r.db.WithContext(ctx).
		Where("chain = ? AND currency = ?", chain, currency).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *TokenRepository) toEntity(m *models.Token) *entities.Token {
	return &entities.Token{
		ID:            m.ID,
		Name:          m.Name,
		Currency:      m.Currency,
		Chain:         m.Chain,
		Network:       m.Network,
		ContractType:  entities.ContractType(m.ContractType),
		Contract:      null.StringFromPtr(m.Contract),
		Decimals:      m.Decimals,
		Confirmations: m.Confirmations,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
	}
}
