package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
)

func TestWalletRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	w := &entities.Wallet{
		UserID:   userID,
		Type:     entities.WalletTypeSpot,
		Currency: "USDT",
		Balance:  decimal.Zero,
		Status:   true,
		Addresses: map[string]entities.DepositAddress{
			"ETH": {Address: "0xabc", Network: "mainnet"},
		},
	}
	require.NoError(t, repo.Create(ctx, w))
	require.NotEqual(t, uuid.Nil, w.ID)

	got, err := repo.Find(ctx, userID, "USDT", entities.WalletTypeSpot)
	require.NoError(t, err)
	require.Equal(t, w.ID, got.ID)
	require.Equal(t, "0xabc", got.Addresses["ETH"].Address)

	byID, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, userID, byID.UserID)

	_, err = repo.Find(ctx, userID, "BTC", entities.WalletTypeSpot)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWalletRepository_DuplicateCreate(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	w1 := &entities.Wallet{UserID: userID, Type: entities.WalletTypeSpot, Currency: "USDT", Status: true}
	require.NoError(t, repo.Create(ctx, w1))

	w2 := &entities.Wallet{UserID: userID, Type: entities.WalletTypeSpot, Currency: "USDT", Status: true}
	err := repo.Create(ctx, w2)
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestWalletRepository_UpdateAddresses(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	w := &entities.Wallet{UserID: uuid.New(), Type: entities.WalletTypeSpot, Currency: "USDT", Status: true}
	require.NoError(t, repo.Create(ctx, w))

	addresses := map[string]entities.DepositAddress{
		"ETH":  {Address: "0xabc", Network: "mainnet"},
		"TRON": {Address: "Txyz", Network: "mainnet"},
	}
	require.NoError(t, repo.UpdateAddresses(ctx, w.ID, addresses))

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 2)
	require.Equal(t, "Txyz", got.Addresses["TRON"].Address)

	err = repo.UpdateAddresses(ctx, uuid.New(), addresses)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWalletRepository_AddBalance(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	w := &entities.Wallet{UserID: uuid.New(), Type: entities.WalletTypeSpot, Currency: "USDT", Balance: decimal.NewFromInt(10), Status: true}
	require.NoError(t, repo.Create(ctx, w))

	require.NoError(t, repo.AddBalance(ctx, w.ID, decimal.RequireFromString("2.5")))

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.RequireFromString("12.5")), "balance=%s", got.Balance)

	err = repo.AddBalance(ctx, uuid.New(), decimal.NewFromInt(1))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDecodeAddresses_LegacyForms(t *testing.T) {
	// structured JSON
	m, err := decodeAddresses(`{"ETH":{"address":"0xabc","network":"mainnet"}}`)
	require.NoError(t, err)
	require.Equal(t, "0xabc", m["ETH"].Address)

	// legacy double-encoded JSON
	m, err = decodeAddresses(`"{\"BSC\":{\"address\":\"0xdef\",\"network\":\"mainnet\"}}"`)
	require.NoError(t, err)
	require.Equal(t, "0xdef", m["BSC"].Address)

	// empty and garbage decode to empty maps
	m, err = decodeAddresses("")
	require.NoError(t, err)
	require.Empty(t, m)

	m, err = decodeAddresses("not-json")
	require.NoError(t, err)
	require.Empty(t, m)
}
