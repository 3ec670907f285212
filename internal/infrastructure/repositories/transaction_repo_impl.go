package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/infrastructure/models"
)

// TransactionRepository implements deposit transaction data operations on GORM
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// transactionMetadata is the persisted shape of the metadata column.
// The watched address is recorded so the reconciler can re-check
// account-scoped chains even when the deposit landed on a shared
// address the wallet itself does not own.
type transactionMetadata struct {
	Address string `json:"address,omitempty"`
}

func encodeTransactionMetadata(trx *entities.Transaction) string {
	if trx.Address == "" {
		return ""
	}
	raw, err := json.Marshal(transactionMetadata{Address: trx.Address})
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeTransactionMetadata(raw string) transactionMetadata {
	var meta transactionMetadata
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &meta)
	}
	return meta
}

// Create inserts a transaction
func (r *TransactionRepository) Create(ctx context.Context, trx *entities.Transaction) error {
	if trx.ID == uuid.Nil {
		trx.ID = uuid.New()
	}

	m := models.Transaction{
		ID:            trx.ID,
		WalletID:      trx.WalletID,
		UserID:        trx.UserID,
		Type:          string(trx.Type),
		Status:        string(trx.Status),
		Chain:         trx.Chain,
		Currency:      trx.Currency,
		Amount:        trx.Amount,
		Fee:           trx.Fee,
		TrxID:         trx.TrxID,
		Confirmations: trx.Confirmations,
		Metadata:      encodeTransactionMetadata(trx),
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	trx.CreatedAt = m.CreatedAt
	return nil
}

// GetByID returns a transaction by its identifier
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByTrxID returns the transaction for a wallet's chain tx id
func (r *TransactionRepository) GetByTrxID(ctx context.Context, walletID uuid.UUID, trxID string) (*entities.Transaction, error) {
	var m models.Transaction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("wallet_id = ? AND trx_id = ?", walletID, trxID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateConfirmations updates the observed confirmation count
func (r *TransactionRepository) UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("confirmations", confirmations)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus moves a transaction to a new status
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Complete moves a PENDING transaction to COMPLETED. The status guard
// in the WHERE clause makes the flip the serialization point: a
// concurrent finalizer's update matches zero rows once the first one
// commits.
func (r *TransactionRepository) Complete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Update("status", string(entities.TransactionStatusCompleted))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListPendingDeposits returns pending deposit transactions across all wallets
func (r *TransactionRepository) ListPendingDeposits(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	var ms []models.Transaction
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("type = ? AND status = ?", string(entities.TransactionTypeDeposit), string(entities.TransactionStatusPending)).
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}

	var trxs []*entities.Transaction
	for _, m := range ms {
		model := m
		trxs = append(trxs, r.toEntity(&model))
	}
	return trxs, nil
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	meta := decodeTransactionMetadata(m.Metadata)
	return &entities.Transaction{
		ID:            m.ID,
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Type:          entities.TransactionType(m.Type),
		Status:        entities.TransactionStatus(m.Status),
		Chain:         m.Chain,
		Currency:      m.Currency,
		Amount:        m.Amount,
		Fee:           m.Fee,
		TrxID:         m.TrxID,
		Address:       meta.Address,
		Confirmations: m.Confirmations,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
