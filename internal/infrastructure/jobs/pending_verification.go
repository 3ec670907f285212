package jobs

import (
	"context"
	"log"
	"time"

	"spot-deposits.backend/internal/config"
	"spot-deposits.backend/internal/domain/entities"
	"spot-deposits.backend/internal/domain/repositories"
	"spot-deposits.backend/internal/infrastructure/blockchain"
	"spot-deposits.backend/internal/usecases"
	"spot-deposits.backend/pkg/metrics"
	"spot-deposits.backend/pkg/redis"
)

const verificationLock = "pending-verification"

// PendingVerificationJob re-verifies pending deposits independent of
// any live monitor: deposits whose monitor went away (disconnects,
// restarts) still confirm and credit through this sweep.
type PendingVerificationJob struct {
	deposits   *usecases.DepositUsecase
	trxRepo    repositories.TransactionRepository
	walletRepo repositories.WalletRepository
	tokenRepo  repositories.TokenRepository
	gateways   *blockchain.Gateways

	interval time.Duration
	maxAge   time.Duration
	batch    int
	useLock  bool
	stop     chan struct{}
}

func NewPendingVerificationJob(
	deposits *usecases.DepositUsecase,
	trxRepo repositories.TransactionRepository,
	walletRepo repositories.WalletRepository,
	tokenRepo repositories.TokenRepository,
	gateways *blockchain.Gateways,
	cfg config.DepositConfig,
) *PendingVerificationJob {
	return &PendingVerificationJob{
		deposits:   deposits,
		trxRepo:    trxRepo,
		walletRepo: walletRepo,
		tokenRepo:  tokenRepo,
		gateways:   gateways,
		interval:   cfg.VerifyInterval,
		maxAge:     cfg.PendingMaxAge,
		batch:      cfg.VerifyBatchSize,
		useLock:    true,
		stop:       make(chan struct{}),
	}
}

// WithoutLock disables the cross-process redis lock. Tests run without
// a redis instance.
func (j *PendingVerificationJob) WithoutLock() *PendingVerificationJob {
	j.useLock = false
	return j
}

// Start runs the verification loop until the context is cancelled or
// Stop is called. The owning process calls it exactly once at startup.
func (j *PendingVerificationJob) Start(ctx context.Context) {
	log.Println("🕐 Starting pending deposit verification job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Pending verification job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Pending verification job stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *PendingVerificationJob) Stop() {
	close(j.stop)
}

// Sweep runs one verification pass. A failing record is logged and
// skipped; it never aborts the rest of the sweep.
func (j *PendingVerificationJob) Sweep(ctx context.Context) {
	if j.useLock {
		acquired, err := redis.AcquireLock(ctx, verificationLock, j.interval)
		if err != nil || !acquired {
			return
		}
		defer func() { _ = redis.ReleaseLock(ctx, verificationLock) }()
	}

	metrics.ReconcilerSweeps.Inc()

	pending, err := j.trxRepo.ListPendingDeposits(ctx, j.batch)
	if err != nil {
		log.Printf("❌ Error fetching pending deposits: %v", err)
		return
	}

	for _, trx := range pending {
		if err := j.verify(ctx, trx); err != nil {
			log.Printf("❌ Error verifying deposit %s on %s: %v", trx.TrxID, trx.Chain, err)
		}
	}

	if err := j.deposits.Expire(ctx, j.maxAge, j.batch); err != nil {
		log.Printf("❌ Error expiring stale deposits: %v", err)
	}
}

func (j *PendingVerificationJob) verify(ctx context.Context, trx *entities.Transaction) error {
	client, err := j.gateways.StatusFor(trx.Chain)
	if err != nil {
		return err
	}

	// Account-scoped chain APIs need the watched address. The one
	// stored on the record wins: shared-address deposits (NO_PERMIT)
	// arrive on a caller-supplied address the wallet does not own.
	address := trx.Address
	if address == "" {
		if wallet, err := j.walletRepo.GetByID(ctx, trx.WalletID); err == nil {
			if addr, ok := wallet.AddressFor(trx.Chain); ok {
				address = addr.Address
			}
		}
	}

	confirmations, err := client.TxConfirmations(ctx, address, trx.TrxID)
	if err != nil {
		return err
	}
	if confirmations > trx.Confirmations {
		if err := j.trxRepo.UpdateConfirmations(ctx, trx.ID, confirmations); err != nil {
			return err
		}
	}

	threshold := j.threshold(ctx, trx)
	if confirmations < threshold {
		return nil
	}

	if err := j.deposits.Credit(ctx, trx.WalletID, trx.TrxID); err != nil {
		return err
	}
	log.Printf("✅ Credited deposit %s on %s (%d confirmations)", trx.TrxID, trx.Chain, confirmations)
	return nil
}

func (j *PendingVerificationJob) threshold(ctx context.Context, trx *entities.Transaction) int {
	tokenConfs := 0
	if token, err := j.tokenRepo.Get(ctx, trx.Chain, trx.Currency); err == nil {
		tokenConfs = token.Confirmations
	}
	return usecases.RequiredConfirmations(trx.Chain, tokenConfs)
}
