package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
)

// WalletRepository implements wallet data operations on GORM
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Find returns the wallet for (userID, currency, walletType)
func (r *WalletRepository) Find(ctx context.Context, userID uuid.UUID, currency string, walletType entities.WalletType) (*entities.Wallet, error) {
	var m walletRow
	err := GetDB(ctx, r.db).WithContext(ctx).
		Table("wallets").
		Where("user_id = ? AND currency = ? AND type = ? AND deleted_at IS NULL", userID, currency, string(walletType)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return m.toEntity()
}

// GetByID returns a wallet by its identifier
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m walletRow
	err := GetDB(ctx, r.db).WithContext(ctx).
		Table("wallets").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return m.toEntity()
}

// Create inserts a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}

	encoded, err := encodeAddresses(wallet.Addresses)
	if err != nil {
		return err
	}

	row := walletRow{
		ID:       wallet.ID,
		UserID:   wallet.UserID,
		Type:     string(wallet.Type),
		Currency: wallet.Currency,
		Balance:  wallet.Balance,
		InOrder:  wallet.InOrder,
		Address:  encoded,
		Status:   wallet.Status,
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Table("wallets").Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	wallet.CreatedAt = row.CreatedAt
	return nil
}

// UpdateAddresses replaces the wallet's stored address map
func (r *WalletRepository) UpdateAddresses(ctx context.Context, walletID uuid.UUID, addresses map[string]entities.DepositAddress) error {
	encoded, err := encodeAddresses(addresses)
	if err != nil {
		return err
	}

	result := GetDB(ctx, r.db).WithContext(ctx).
		Table("wallets").
		Where("id = ? AND deleted_at IS NULL", walletID).
		Update("address", encoded)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// AddBalance atomically adds amount to the wallet's balance
func (r *WalletRepository) AddBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Table("wallets").
		Where("id = ? AND deleted_at IS NULL", walletID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// walletRow is the persisted shape; the address column is JSON text
type walletRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Currency  string
	Balance   decimal.Decimal
	InOrder   decimal.Decimal
	Address   string
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *walletRow) toEntity() (*entities.Wallet, error) {
	addresses, err := decodeAddresses(m.Address)
	if err != nil {
		return nil, err
	}
	return &entities.Wallet{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entities.WalletType(m.Type),
		Currency:  m.Currency,
		Balance:   m.Balance,
		InOrder:   m.InOrder,
		Addresses: addresses,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// decodeAddresses parses the stored address column. Legacy rows may
// carry a double-encoded JSON string; that form is tolerated here and
// nowhere else. Absent or unparseable data decodes to an empty map.
func decodeAddresses(raw string) (map[string]entities.DepositAddress, error) {
	addresses := make(map[string]entities.DepositAddress)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return addresses, nil
	}

	if err := json.Unmarshal([]byte(trimmed), &addresses); err == nil {
		return addresses, nil
	}

	// legacy double-encoded form: a JSON string containing JSON
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &addresses); err == nil {
			return addresses, nil
		}
	}

	return make(map[string]entities.DepositAddress), nil
}

func encodeAddresses(addresses map[string]entities.DepositAddress) (string, error) {
	if addresses == nil {
		addresses = make(map[string]entities.DepositAddress)
	}
	encoded, err := json.Marshal(addresses)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// isUniqueViolation matches unique constraint errors across postgres and sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
