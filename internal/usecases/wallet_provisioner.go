package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/domain/repositories"
	"spot-deposits.backend/pkg/addrgen"
	"spot-deposits.backend/pkg/logger"
)

// AddressGenerator creates a deposit address for a chain
type AddressGenerator func(chain string) (addrgen.Generated, error)

// WalletProvisioner ensures a user's SPOT wallet exists and carries a
// deposit address for every chain active for its currency.
type WalletProvisioner struct {
	uow        repositories.UnitOfWork
	walletRepo repositories.WalletRepository
	tokenRepo  repositories.TokenRepository
	generate   AddressGenerator
}

// NewWalletProvisioner creates a new wallet provisioner
func NewWalletProvisioner(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	tokenRepo repositories.TokenRepository,
) *WalletProvisioner {
	return &WalletProvisioner{
		uow:        uow,
		walletRepo: walletRepo,
		tokenRepo:  tokenRepo,
		generate:   addrgen.Generate,
	}
}

// WithGenerator overrides the address generator. Tests use this to make
// generation deterministic.
func (p *WalletProvisioner) WithGenerator(generate AddressGenerator) *WalletProvisioner {
	p.generate = generate
	return p
}

// EnsureWallet fetches or creates the user's SPOT wallet for currency
// and generates addresses for every active chain still missing one.
// Idempotent: a second call with no registry change is a no-op.
func (p *WalletProvisioner) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	wallet, err := p.findOrCreate(ctx, userID, currency)
	if err != nil {
		return nil, err
	}

	tokens, err := p.tokenRepo.GetActiveByCurrency(ctx, currency)
	if err != nil {
		return nil, err
	}

	missing := wallet.MissingChains(tokens)
	if len(missing) == 0 {
		return wallet, nil
	}

	// Generate outside the transaction, persist inside one. The
	// read-modify-write of the address map re-reads under the tx so a
	// concurrent provisioner's additions are not lost.
	generated := make(map[string]entities.DepositAddress, len(missing))
	for _, token := range missing {
		addr, err := p.generate(token.Chain)
		if err != nil {
			return nil, err
		}
		generated[token.Chain] = entities.DepositAddress{
			Address: addr.Address,
			Network: token.Network,
			Memo:    addr.Memo,
		}
	}

	err = p.uow.Do(ctx, func(ctx context.Context) error {
		current, err := p.walletRepo.GetByID(ctx, wallet.ID)
		if err != nil {
			return err
		}
		merged := make(map[string]entities.DepositAddress, len(current.Addresses)+len(generated))
		for chain, addr := range current.Addresses {
			merged[chain] = addr
		}
		for chain, addr := range generated {
			if _, ok := merged[chain]; !ok {
				merged[chain] = addr
			}
		}
		return p.walletRepo.UpdateAddresses(ctx, wallet.ID, merged)
	})
	if err != nil {
		return nil, err
	}

	updated, err := p.walletRepo.GetByID(ctx, wallet.ID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrWalletProvisioning
		}
		return nil, err
	}

	logger.Info(ctx, "wallet addresses provisioned",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("currency", currency),
		zap.Int("added", len(generated)),
	)
	return updated, nil
}

func (p *WalletProvisioner) findOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	wallet, err := p.walletRepo.Find(ctx, userID, currency, entities.WalletTypeSpot)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	fresh := &entities.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      entities.WalletTypeSpot,
		Currency:  currency,
		Balance:   decimal.Zero,
		InOrder:   decimal.Zero,
		Addresses: map[string]entities.DepositAddress{},
		Status:    true,
	}
	err = p.uow.Do(ctx, func(ctx context.Context) error {
		return p.walletRepo.Create(ctx, fresh)
	})
	if err == nil {
		return fresh, nil
	}
	// A concurrent creator won the uniqueness race
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		return p.walletRepo.Find(ctx, userID, currency, entities.WalletTypeSpot)
	}
	return nil, err
}
