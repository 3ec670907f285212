package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/domain/repositories"
	"spot-deposits.backend/pkg/logger"
	"spot-deposits.backend/pkg/metrics"
)

// PendingDeposit is one inbound transfer observed by a monitor
type PendingDeposit struct {
	WalletID      uuid.UUID
	UserID        uuid.UUID
	Chain         string
	Currency      string
	TrxID         string
	Address       string // watched deposit address the transfer arrived on
	Amount        decimal.Decimal
	Confirmations int
}

// DepositAddressView is the deposit address response shape
type DepositAddressView struct {
	Address string `json:"address"`
	Network string `json:"network"`
	Memo    string `json:"memo,omitempty"`
	Trx     bool   `json:"trx"`
}

// DepositUsecase records detected deposits and credits them once confirmed
type DepositUsecase struct {
	uow        repositories.UnitOfWork
	walletRepo repositories.WalletRepository
	trxRepo    repositories.TransactionRepository
	tokenRepo  repositories.TokenRepository
}

// NewDepositUsecase creates a new deposit usecase
func NewDepositUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	trxRepo repositories.TransactionRepository,
	tokenRepo repositories.TokenRepository,
) *DepositUsecase {
	return &DepositUsecase{
		uow:        uow,
		walletRepo: walletRepo,
		trxRepo:    trxRepo,
		tokenRepo:  tokenRepo,
	}
}

// RecordPending creates or refreshes the pending transaction for an
// observed transfer. Idempotent by (wallet, chain tx id): duplicate
// detections update the confirmation count and nothing else.
func (u *DepositUsecase) RecordPending(ctx context.Context, dep PendingDeposit) (*entities.Transaction, error) {
	existing, err := u.trxRepo.GetByTrxID(ctx, dep.WalletID, dep.TrxID)
	if err == nil {
		if !existing.IsFinal() && dep.Confirmations > existing.Confirmations {
			if err := u.trxRepo.UpdateConfirmations(ctx, existing.ID, dep.Confirmations); err != nil {
				return nil, err
			}
			existing.Confirmations = dep.Confirmations
		}
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	trx := &entities.Transaction{
		ID:            uuid.New(),
		WalletID:      dep.WalletID,
		UserID:        dep.UserID,
		Type:          entities.TransactionTypeDeposit,
		Status:        entities.TransactionStatusPending,
		Chain:         dep.Chain,
		Currency:      dep.Currency,
		Amount:        dep.Amount,
		Fee:           decimal.Zero,
		TrxID:         dep.TrxID,
		Address:       dep.Address,
		Confirmations: dep.Confirmations,
	}
	if err := u.trxRepo.Create(ctx, trx); err != nil {
		// Lost the race against a concurrent detection of the same transfer
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return u.trxRepo.GetByTrxID(ctx, dep.WalletID, dep.TrxID)
		}
		return nil, err
	}

	metrics.DepositsDetected.WithLabelValues(dep.Chain).Inc()
	logger.Info(ctx, "deposit detected",
		zap.String("wallet_id", dep.WalletID.String()),
		zap.String("chain", dep.Chain),
		zap.String("trx_id", dep.TrxID),
		zap.String("amount", dep.Amount.String()),
	)
	return trx, nil
}

// Credit finalizes a confirmed deposit: marks the transaction
// COMPLETED and adds the amount to the wallet balance, atomically.
// The conditional status flip is the gate; a plain read of the status
// offers no isolation under READ COMMITTED, so a live monitor and the
// reconciler finalizing the same record would both see PENDING. Only
// the finalizer whose UPDATE moves the row out of PENDING credits.
func (u *DepositUsecase) Credit(ctx context.Context, walletID uuid.UUID, trxID string) error {
	return u.uow.Do(ctx, func(ctx context.Context) error {
		trx, err := u.trxRepo.GetByTrxID(ctx, walletID, trxID)
		if err != nil {
			return err
		}
		if trx.IsFinal() {
			return nil
		}

		won, err := u.trxRepo.Complete(ctx, trx.ID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}

		if err := u.walletRepo.AddBalance(ctx, trx.WalletID, trx.Amount); err != nil {
			return err
		}

		metrics.DepositsCredited.WithLabelValues(trx.Chain).Inc()
		logger.Info(ctx, "deposit credited",
			zap.String("wallet_id", trx.WalletID.String()),
			zap.String("trx_id", trx.TrxID),
			zap.String("amount", trx.Amount.String()),
		)
		return nil
	})
}

// Expire fails pending deposits stuck past maxAge
func (u *DepositUsecase) Expire(ctx context.Context, maxAge time.Duration, batch int) error {
	pending, err := u.trxRepo.ListPendingDeposits(ctx, batch)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, trx := range pending {
		if trx.CreatedAt.After(cutoff) {
			continue
		}
		if err := u.trxRepo.UpdateStatus(ctx, trx.ID, entities.TransactionStatusFailed); err != nil {
			logger.Error(ctx, "failed to expire pending deposit",
				zap.String("trx_id", trx.TrxID), zap.Error(err))
			continue
		}
		logger.Warn(ctx, "pending deposit expired",
			zap.String("wallet_id", trx.WalletID.String()),
			zap.String("trx_id", trx.TrxID),
		)
	}
	return nil
}

// GetDepositAddress returns the user's deposit address for a
// (currency, chain). Read-only: a missing address means the user has
// not opened the deposit watch flow yet, and this path does not
// provision on its behalf.
func (u *DepositUsecase) GetDepositAddress(ctx context.Context, userID uuid.UUID, currency, chain string) (*DepositAddressView, error) {
	wallet, err := u.walletRepo.Find(ctx, userID, currency, entities.WalletTypeSpot)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}

	addr, ok := wallet.AddressFor(chain)
	if !ok {
		return nil, domainerrors.ErrAddressNotFound
	}

	network := addr.Network
	if network == "" {
		if token, err := u.tokenRepo.Get(ctx, chain, currency); err == nil {
			network = token.Network
		}
	}

	return &DepositAddressView{
		Address: addr.Address,
		Network: network,
		Memo:    addr.Memo,
		Trx:     true,
	}, nil
}
