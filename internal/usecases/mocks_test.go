package usecases_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/usecases"
)

// nopUnitOfWork runs the function without a real transaction
type nopUnitOfWork struct{}

func (nopUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Find(ctx context.Context, userID uuid.UUID, currency string, walletType entities.WalletType) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, currency, walletType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateAddresses(ctx context.Context, walletID uuid.UUID, addresses map[string]entities.DepositAddress) error {
	args := m.Called(ctx, walletID, addresses)
	return args.Error(0)
}

func (m *MockWalletRepository) AddBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

// Mock TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) GetActiveByCurrency(ctx context.Context, currency string) ([]*entities.Token, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Token), args.Error(1)
}

func (m *MockTokenRepository) Get(ctx context.Context, chain, currency string) (*entities.Token, error) {
	args := m.Called(ctx, chain, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Token), args.Error(1)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, trx *entities.Transaction) error {
	args := m.Called(ctx, trx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByTrxID(ctx context.Context, walletID uuid.UUID, trxID string) (*entities.Transaction, error) {
	args := m.Called(ctx, walletID, trxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int) error {
	args := m.Called(ctx, id, confirmations)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTransactionRepository) Complete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ListPendingDeposits(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

// memWalletRepo is a stateful in-memory wallet store for provisioning
// flows that span several calls.
type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*entities.Wallet
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[uuid.UUID]*entities.Wallet)}
}

func (r *memWalletRepo) Find(_ context.Context, userID uuid.UUID, currency string, walletType entities.WalletType) (*entities.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency && w.Type == walletType {
			return copyWallet(w), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memWalletRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return copyWallet(w), nil
}

func (r *memWalletRepo) Create(_ context.Context, wallet *entities.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == wallet.UserID && w.Currency == wallet.Currency && w.Type == wallet.Type {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.wallets[wallet.ID] = copyWallet(wallet)
	return nil
}

func (r *memWalletRepo) UpdateAddresses(_ context.Context, walletID uuid.UUID, addresses map[string]entities.DepositAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	w.Addresses = make(map[string]entities.DepositAddress, len(addresses))
	for chain, addr := range addresses {
		w.Addresses[chain] = addr
	}
	return nil
}

func (r *memWalletRepo) AddBalance(_ context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

func copyWallet(w *entities.Wallet) *entities.Wallet {
	dup := *w
	dup.Addresses = make(map[string]entities.DepositAddress, len(w.Addresses))
	for chain, addr := range w.Addresses {
		dup.Addresses[chain] = addr
	}
	return &dup
}

// fakeMonitor counts lifecycle calls for manager tests
type fakeMonitor struct {
	mu     sync.Mutex
	chain  string
	active bool
	starts int
	stops  int
}

func (f *fakeMonitor) Chain() string {
	return f.chain
}

func (f *fakeMonitor) StartPolling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		f.active = true
	}
	f.starts++
}

func (f *fakeMonitor) StopPolling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.stops++
}

func (f *fakeMonitor) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeMonitor) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// countingFactory records constructions and hands out fake monitors
type countingFactory struct {
	mu       sync.Mutex
	built    int
	monitors []*fakeMonitor
	configs  []usecases.MonitorConfig
}

func (c *countingFactory) build(chain string, cfg usecases.MonitorConfig) (usecases.Monitor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built++
	c.configs = append(c.configs, cfg)
	m := &fakeMonitor{chain: chain}
	c.monitors = append(c.monitors, m)
	return m, nil
}

func (c *countingFactory) builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.built
}

func (c *countingFactory) lastConfig() usecases.MonitorConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configs[len(c.configs)-1]
}
