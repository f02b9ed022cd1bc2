// Package execution implements the Trade Execution Engine (spec.md
// §4.3): a worker pool that claims TradeJobs and runs the BUY and SELL
// pipelines to completion with exactly-once semantics. Grounded on the
// teacher's internal/bot/engine.go worker/ticker shape and
// internal/bot/order.go's OrderExecutor (parallel-leg order placement
// generalized to a single-chain quote/sign/submit pipeline).
package execution

import (
	"context"
	"fmt"
	"os"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/audit"
	"raptor/internal/metrics"
	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/internal/store"
	"raptor/pkg/crypto"
	"raptor/pkg/errkind"
	"raptor/pkg/logging"
	"raptor/pkg/retry"
)

// Config tunes the worker pool's claim/lease/retry behavior.
type Config struct {
	Workers          int
	PollInterval     time.Duration
	ClaimLease       time.Duration // claimed rows older than this are re-eligible
	MaxAttempts      int
	MasterKey        []byte // 32 bytes, HKDF master key for wallet subkeys (spec.md §6)
	PriceImpactCapBp int
	RentBufferSol    float64 // reserved above the trade amount for rent/fees (spec.md §4.3 step 3)
}

// DefaultConfig mirrors spec.md §5's cancellation-point defaults: 5s RPC
// deadline baseline, a handful of workers, a lease long enough to survive
// one worker's crash without starving the queue.
func DefaultConfig() Config {
	return Config{
		Workers:          4,
		PollInterval:     500 * time.Millisecond,
		ClaimLease:       2 * time.Minute,
		MaxAttempts:      3,
		PriceImpactCapBp: 1000, // 10%, per-chain ceiling; spec.md §4.3 step 4 names 5% as the warn line
		RentBufferSol:    0.01,
	}
}

// BalanceReader reads a wallet's native balance, used by the BUY
// pipeline's balance validation step.
type BalanceReader interface {
	SolBalance(ctx context.Context, pubkey solanago.PublicKey) (float64, error)
}

// CurveDecoder reads a bonding curve's reserves; the production
// implementation decodes the launchpad program's account layout via
// internal/solana, injected here so this package stays free of any one
// launchpad's binary format.
type CurveDecoder = router.CurveReader

// Engine runs the worker pool described by spec.md §4.3's "Worker
// lifecycle": each worker derives a stable worker_id once at start, then
// loops claim_next_job -> execute -> repeat.
type Engine struct {
	store     *store.Store
	submitter router.Submitter
	builder   router.TxBuilder
	curves    CurveDecoder
	quoter    router.PriceQuoter
	graduated router.KnownGraduated
	balances  BalanceReader // optional; nil skips the balance validation step
	trades    *audit.TradeLog // optional; nil disables audit logging
	cfg       Config
	log       *logging.Logger
}

// New builds an execution engine. quoter/graduated may be nil until
// AMM-aggregator support is wired; the bonding-curve path alone satisfies
// pre-graduation trading. balances may be nil to skip balance validation.
// trades may be nil to skip audit logging.
func New(st *store.Store, submitter router.Submitter, builder router.TxBuilder, curves CurveDecoder, quoter router.PriceQuoter, graduated router.KnownGraduated, balances BalanceReader, trades *audit.TradeLog, cfg Config, log *logging.Logger) *Engine {
	return &Engine{store: st, submitter: submitter, builder: builder, curves: curves, quoter: quoter, graduated: graduated, balances: balances, trades: trades, cfg: cfg, log: log}
}

func (e *Engine) recordAudit(entry audit.Entry) {
	if e.trades != nil {
		e.trades.Record(entry)
	}
}

// workerID derives a per-worker identity: hostname + pid + worker index, so
// restarts get a fresh id and claimed-but-abandoned rows fall back to the
// lease timeout rather than being silently reclaimed by the same id
// (spec.md §4.3: "Worker identity is an ambient string derived once per
// process; never shared").
func workerID(n int) string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), n)
}

// Start launches cfg.Workers goroutines, each polling claim_next_job on
// its own ticker until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.cfg.Workers; i++ {
		go e.runWorker(ctx, workerID(i))
	}
}

func (e *Engine) runWorker(ctx context.Context, id string) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.claimAndRun(ctx, id)
		}
	}
}

func (e *Engine) claimAndRun(ctx context.Context, id string) {
	jobs, err := e.store.TradeJobs.ClaimNext(ctx, id, 1, e.cfg.ClaimLease)
	if err != nil {
		if e.log != nil {
			e.log.Warn("execution: claim failed", logging.WorkerID(id), logging.Err(err))
		}
		return
	}
	for _, job := range jobs {
		e.runJob(ctx, id, job)
	}
}

func (e *Engine) runJob(ctx context.Context, workerID string, job *models.TradeJob) {
	ok, err := e.store.TradeJobs.MarkExecuting(job.ID, workerID)
	if err != nil || !ok {
		return // lost the race or a transient error; the lease will recycle it
	}

	var runErr error
	switch job.Action {
	case models.JobActionBuy:
		runErr = e.executeBuy(ctx, job)
	case models.JobActionSell:
		runErr = e.executeSell(ctx, job)
	default:
		runErr = fmt.Errorf("execution: unknown job action %q", job.Action)
	}

	if runErr != nil {
		if e.log != nil {
			e.log.Warn("execution: job failed", logging.WorkerID(workerID), logging.Err(runErr))
		}
		metrics.RecordTrade(string(job.Action), "failed", 0)
		e.recordAudit(audit.Entry{
			UserTelegramID: job.UserTelegramID,
			Chain:          job.Chain,
			TokenMint:      job.Payload.Mint,
			Action:         job.Action,
			Trigger:        job.Payload.Trigger,
			AmountSol:      job.Payload.AmountSol,
			Success:        false,
			ErrorMsg:       runErr.Error(),
		})
		terminal := job.Attempts+1 >= e.cfg.MaxAttempts
		if terminal {
			e.notifyFailure(job, runErr)
		}
		_ = e.store.TradeJobs.Fail(job.ID, runErr.Error(), e.cfg.MaxAttempts)
		return
	}
	_ = e.store.TradeJobs.Complete(job.ID)
}

// notifyFailure creates the one outbox notification a terminally-failed
// job owes its user (spec.md §7: every terminal state produces exactly
// one notification). A BUY that exhausted its attempts on insufficient
// funds reads as a skipped hunt, not a failed trade; every other BUY
// failure is BUY_FAILED, and a SELL failure is EXECUTION_FAILED.
func (e *Engine) notifyFailure(job *models.TradeJob, runErr error) {
	notif := &models.Notification{
		UserTelegramID: job.UserTelegramID,
		Payload: map[string]interface{}{
			"mint":  job.Payload.Mint,
			"error": runErr.Error(),
		},
	}

	switch {
	case job.Action == models.JobActionBuy && errkind.Is(runErr, errkind.InsufficientFunds):
		notif.Type = models.NotificationHuntSkipped
		notif.Payload["reason"] = "insufficient balance"
		if fields := errkind.FieldsOf(runErr); fields != nil {
			if needed, ok := fields["needed"].(float64); ok {
				notif.Payload["needed"] = fmt.Sprintf("%.2f SOL", needed)
			}
			if have, ok := fields["have"].(float64); ok {
				notif.Payload["have"] = fmt.Sprintf("%.2f SOL", have)
			}
		}
	case job.Action == models.JobActionBuy:
		notif.Type = models.NotificationBuyFailed
	case job.Action == models.JobActionSell:
		notif.Type = models.NotificationExecutionFailed
		notif.Payload["positionId"] = job.Payload.PositionID.String()
		notif.Payload["trigger"] = string(job.Payload.Trigger)
	default:
		return
	}

	if err := e.store.Notifications.Create(notif); err != nil && e.log != nil {
		e.log.Warn("execution: failure notification enqueue failed", logging.Err(err))
	}
}

// openWallet decrypts a user's wallet secret for the narrow critical
// section around signing, per spec.md §5 ("decrypted only inside a
// narrow critical section... zeroized on all exit paths").
func (e *Engine) openWallet(userTelegramID int64, w *models.Wallet) ([]byte, error) {
	subkey, err := crypto.DeriveUserKey(e.cfg.MasterKey, userTelegramID, w.ID.String())
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(subkey)

	secret, err := crypto.OpenSecret(subkey, w.EncryptedSecret)
	if err != nil {
		return nil, errkind.New(errkind.ConfigFatal, err, nil)
	}
	return secret, nil
}

// retryPolicyFor resolves the classified retry policy for one error kind,
// thin wrapper kept so callers don't import pkg/retry directly.
func retryPolicyFor(kind string) retry.Config {
	return retry.ClassifiedPolicy(kind)
}
