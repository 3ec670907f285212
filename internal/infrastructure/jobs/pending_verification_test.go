package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"spot-deposits.backend/internal/config"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/infrastructure/blockchain"
	"spot-deposits.backend/internal/usecases"
)

type trxRepoStub struct {
	pending        []*entities.Transaction
	listErr        error
	statusUpdates  map[string]entities.TransactionStatus
	confirmUpdates map[string]int
}

func newTrxRepoStub(pending ...*entities.Transaction) *trxRepoStub {
	return &trxRepoStub{
		pending:        pending,
		statusUpdates:  make(map[string]entities.TransactionStatus),
		confirmUpdates: make(map[string]int),
	}
}

func (s *trxRepoStub) Create(context.Context, *entities.Transaction) error { return nil }

func (s *trxRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
	for _, trx := range s.pending {
		if trx.ID == id {
			return trx, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *trxRepoStub) GetByTrxID(_ context.Context, walletID uuid.UUID, trxID string) (*entities.Transaction, error) {
	for _, trx := range s.pending {
		if trx.WalletID == walletID && trx.TrxID == trxID {
			return trx, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *trxRepoStub) UpdateConfirmations(_ context.Context, id uuid.UUID, confirmations int) error {
	s.confirmUpdates[id.String()] = confirmations
	return nil
}

func (s *trxRepoStub) Complete(_ context.Context, id uuid.UUID) (bool, error) {
	for _, trx := range s.pending {
		if trx.ID == id {
			if trx.Status != entities.TransactionStatusPending {
				return false, nil
			}
			trx.Status = entities.TransactionStatusCompleted
			s.statusUpdates[trx.TrxID] = entities.TransactionStatusCompleted
			return true, nil
		}
	}
	return false, domainerrors.ErrNotFound
}

func (s *trxRepoStub) UpdateStatus(_ context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	for _, trx := range s.pending {
		if trx.ID == id {
			trx.Status = status
			s.statusUpdates[trx.TrxID] = status
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (s *trxRepoStub) ListPendingDeposits(context.Context, int) ([]*entities.Transaction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entities.Transaction
	for _, trx := range s.pending {
		if trx.Status == entities.TransactionStatusPending {
			out = append(out, trx)
		}
	}
	return out, nil
}

type walletRepoStub struct {
	wallets  map[uuid.UUID]*entities.Wallet
	credited map[uuid.UUID]decimal.Decimal
}

func newWalletRepoStub(wallets ...*entities.Wallet) *walletRepoStub {
	s := &walletRepoStub{
		wallets:  make(map[uuid.UUID]*entities.Wallet),
		credited: make(map[uuid.UUID]decimal.Decimal),
	}
	for _, w := range wallets {
		s.wallets[w.ID] = w
	}
	return s
}

func (s *walletRepoStub) Find(context.Context, uuid.UUID, string, entities.WalletType) (*entities.Wallet, error) {
	return nil, domainerrors.ErrNotFound
}

func (s *walletRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.Wallet, error) {
	if w, ok := s.wallets[id]; ok {
		return w, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (s *walletRepoStub) Create(context.Context, *entities.Wallet) error { return nil }

func (s *walletRepoStub) UpdateAddresses(context.Context, uuid.UUID, map[string]entities.DepositAddress) error {
	return nil
}

func (s *walletRepoStub) AddBalance(_ context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	s.credited[walletID] = s.credited[walletID].Add(amount)
	return nil
}

type tokenRepoStub struct{}

func (tokenRepoStub) GetActiveByCurrency(context.Context, string) ([]*entities.Token, error) {
	return nil, nil
}

func (tokenRepoStub) Get(context.Context, string, string) (*entities.Token, error) {
	return nil, domainerrors.ErrNotFound
}

type nopUoW struct{}

func (nopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func pendingBTC(walletID uuid.UUID, trxID string) *entities.Transaction {
	return &entities.Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Type:      entities.TransactionTypeDeposit,
		Status:    entities.TransactionStatusPending,
		Chain:     "BTC",
		Currency:  "BTC",
		Amount:    decimal.NewFromFloat(0.5),
		TrxID:     trxID,
		CreatedAt: time.Now(),
	}
}

// esplora stub confirming tx "deep" at height 90 with tip 100
func newStatusServer(t *testing.T) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: httptest server unavailable in this environment: %v", r)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("100"))
	})
	mux.HandleFunc("/tx/deep", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"txid":"deep","status":{"confirmed":true,"block_height":90}}`))
	})
	mux.HandleFunc("/tx/shallow", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"txid":"shallow","status":{"confirmed":false}}`))
	})
	return httptest.NewServer(mux)
}

// toncenter stub that only admits deposit "tonhash" on the shared
// address; any other queried account has an empty history
func newTonServer(t *testing.T, sharedAddress string) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: httptest server unavailable in this environment: %v", r)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/getTransactions", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") != sharedAddress {
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[{
			"transaction_id":{"hash":"tonhash","lt":"100"},
			"utime":1700000000,
			"in_msg":{"value":"2500000000","destination":"` + sharedAddress + `","message":"u1"}
		}]}`))
	})
	return httptest.NewServer(mux)
}

func newTonTestJob(trxRepo *trxRepoStub, walletRepo *walletRepoStub, tonAPI string) *PendingVerificationJob {
	gateways := blockchain.NewGateways(config.ChainsConfig{
		TonAPI: tonAPI,
	}, blockchain.NewClientFactory())

	deposits := usecases.NewDepositUsecase(nopUoW{}, walletRepo, trxRepo, tokenRepoStub{})
	return NewPendingVerificationJob(deposits, trxRepo, walletRepo, tokenRepoStub{}, gateways, config.DepositConfig{
		VerifyInterval:  time.Millisecond,
		PendingMaxAge:   24 * time.Hour,
		VerifyBatchSize: 100,
	}).WithoutLock()
}

func newTestJob(trxRepo *trxRepoStub, walletRepo *walletRepoStub, utxoAPI string) *PendingVerificationJob {
	gateways := blockchain.NewGateways(config.ChainsConfig{
		UTXOAPI: map[string]string{"BTC": utxoAPI},
	}, blockchain.NewClientFactory())

	deposits := usecases.NewDepositUsecase(nopUoW{}, walletRepo, trxRepo, tokenRepoStub{})
	return NewPendingVerificationJob(deposits, trxRepo, walletRepo, tokenRepoStub{}, gateways, config.DepositConfig{
		VerifyInterval:  time.Millisecond,
		PendingMaxAge:   24 * time.Hour,
		VerifyBatchSize: 100,
	}).WithoutLock()
}

func TestSweep_CreditsMaturedDeposit(t *testing.T) {
	srv := newStatusServer(t)
	defer srv.Close()

	walletID := uuid.New()
	trxRepo := newTrxRepoStub(pendingBTC(walletID, "deep"))
	walletRepo := newWalletRepoStub(&entities.Wallet{
		ID:        walletID,
		Addresses: map[string]entities.DepositAddress{"BTC": {Address: "bc1qwatched"}},
	})

	job := newTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Equal(t, entities.TransactionStatusCompleted, trxRepo.statusUpdates["deep"])
	require.True(t, walletRepo.credited[walletID].Equal(decimal.NewFromFloat(0.5)))
}

func TestSweep_LeavesShallowDepositPending(t *testing.T) {
	srv := newStatusServer(t)
	defer srv.Close()

	walletID := uuid.New()
	trxRepo := newTrxRepoStub(pendingBTC(walletID, "shallow"))
	walletRepo := newWalletRepoStub(&entities.Wallet{ID: walletID})

	job := newTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Empty(t, trxRepo.statusUpdates)
	require.Empty(t, walletRepo.credited[walletID])
}

func pendingTON(walletID uuid.UUID, address string) *entities.Transaction {
	return &entities.Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Type:      entities.TransactionTypeDeposit,
		Status:    entities.TransactionStatusPending,
		Chain:     "TON",
		Currency:  "TON",
		Amount:    decimal.NewFromFloat(2.5),
		TrxID:     "tonhash",
		Address:   address,
		CreatedAt: time.Now(),
	}
}

// Shared-address deposits arrive on an account the wallet does not
// own. The sweep must query the address recorded on the transaction,
// not the wallet's own address.
func TestSweep_VerifiesAgainstRecordedAddress(t *testing.T) {
	srv := newTonServer(t, "EQShared")
	defer srv.Close()

	walletID := uuid.New()
	trxRepo := newTrxRepoStub(pendingTON(walletID, "EQShared"))
	walletRepo := newWalletRepoStub(&entities.Wallet{
		ID:        walletID,
		Addresses: map[string]entities.DepositAddress{"TON": {Address: "EQOwn"}},
	})

	job := newTonTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Equal(t, entities.TransactionStatusCompleted, trxRepo.statusUpdates["tonhash"])
	require.True(t, walletRepo.credited[walletID].Equal(decimal.NewFromFloat(2.5)))
}

func TestSweep_FallsBackToWalletAddress(t *testing.T) {
	srv := newTonServer(t, "EQShared")
	defer srv.Close()

	walletID := uuid.New()
	trxRepo := newTrxRepoStub(pendingTON(walletID, ""))
	walletRepo := newWalletRepoStub(&entities.Wallet{
		ID:        walletID,
		Addresses: map[string]entities.DepositAddress{"TON": {Address: "EQShared"}},
	})

	job := newTonTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Equal(t, entities.TransactionStatusCompleted, trxRepo.statusUpdates["tonhash"])
}

func TestSweep_FailingRecordDoesNotAbort(t *testing.T) {
	srv := newStatusServer(t)
	defer srv.Close()

	walletID := uuid.New()
	broken := pendingBTC(walletID, "unverifiable")
	broken.Chain = "NEWCHAIN" // no gateway -> per-record error
	good := pendingBTC(walletID, "deep")

	trxRepo := newTrxRepoStub(broken, good)
	walletRepo := newWalletRepoStub(&entities.Wallet{ID: walletID})

	job := newTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Equal(t, entities.TransactionStatusCompleted, trxRepo.statusUpdates["deep"])
	require.True(t, walletRepo.credited[walletID].Equal(decimal.NewFromFloat(0.5)))
}

func TestSweep_ExpiresStaleDeposits(t *testing.T) {
	srv := newStatusServer(t)
	defer srv.Close()

	walletID := uuid.New()
	stale := pendingBTC(walletID, "shallow")
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)

	trxRepo := newTrxRepoStub(stale)
	walletRepo := newWalletRepoStub(&entities.Wallet{ID: walletID})

	job := newTestJob(trxRepo, walletRepo, srv.URL)
	job.Sweep(context.Background())

	require.Equal(t, entities.TransactionStatusFailed, trxRepo.statusUpdates["shallow"])
}

func TestSweep_ListErrorSkipsSweep(t *testing.T) {
	trxRepo := newTrxRepoStub()
	trxRepo.listErr = errors.New("db down")
	walletRepo := newWalletRepoStub()

	job := newTestJob(trxRepo, walletRepo, "http://127.0.0.1:1")
	job.Sweep(context.Background())
	require.Empty(t, trxRepo.statusUpdates)
}

func TestStartStop(t *testing.T) {
	trxRepo := newTrxRepoStub()
	walletRepo := newWalletRepoStub()
	job := newTestJob(trxRepo, walletRepo, "http://127.0.0.1:1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on context cancel")
	}

	job2 := newTestJob(trxRepo, walletRepo, "http://127.0.0.1:1")
	done2 := make(chan struct{})
	go func() {
		job2.Start(context.Background())
		close(done2)
	}()
	job2.Stop()

	select {
	case <-done2:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on Stop")
	}
}
