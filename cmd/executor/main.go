// Command executor runs the trade execution engine's worker pool: it
// claims queued trade jobs, quotes and builds the swap instruction
// through the appropriate router, signs with the job's wallet, submits,
// and records the outcome. It owns the only code path in RAPTOR that
// signs a transaction.
package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/audit"
	"raptor/internal/config"
	"raptor/internal/execution"
	"raptor/internal/jupiter"
	"raptor/internal/launchpad"
	"raptor/internal/rpc"
	"raptor/internal/store"
	"raptor/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.GetGlobalLogger().Fatal("executor: load config", logging.Err(err))
	}

	lg := logging.InitGlobalLogger(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithComponent("executor")

	st, err := store.Open(cfg.Database)
	if err != nil {
		lg.Fatal("open store", logging.Err(err))
	}
	defer st.Close()

	masterKey, err := hex.DecodeString(cfg.Security.WalletMasterKeyHex)
	if err != nil || len(masterKey) != 32 {
		lg.Fatal("invalid wallet master key", logging.Err(err))
	}

	pool := rpc.NewPool(cfg.Solana.RPCPrimaryURL, cfg.Solana.RPCFallbackURLs, lg)
	curves := rpc.NewCurveReader(pool)
	submitter := rpc.NewSubmitter(pool)
	graduated := rpc.NewGraduationTracker(curves, curveOfMint(st))
	balances := rpc.NewBalanceReader(pool)
	builder := launchpad.NewBuilder(pool)
	quoter := jupiter.NewClient()

	trades, err := audit.NewTradeLog("data/trades", 1000, lg.WithComponent("audit"))
	if err != nil {
		lg.Fatal("open trade log", logging.Err(err))
	}
	defer trades.Close()

	execCfg := execution.DefaultConfig()
	execCfg.Workers = cfg.Executor.WorkerCount
	execCfg.PollInterval = cfg.Executor.PollInterval
	execCfg.ClaimLease = cfg.Executor.JobLeaseTTL
	execCfg.MaxAttempts = cfg.Executor.MaxAttempts
	execCfg.MasterKey = masterKey
	execCfg.PriceImpactCapBp = cfg.Executor.PriceImpactCapBps
	execCfg.RentBufferSol = cfg.Executor.RentBufferSol

	engine := execution.New(st, submitter, builder, curves, quoter, graduated, balances, trades, execCfg, lg.WithComponent("engine"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.Start(ctx)
	lg.Info("executor started", logging.Int("workers", execCfg.Workers))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("executor shutting down")
	cancel()
	lg.Info("executor exited")
}

// curveOfMint resolves a mint's bonding curve PDA via the opportunities
// table, the only place RAPTOR persists that mapping once a launch has
// been scored.
func curveOfMint(st *store.Store) func(mint string) (solanago.PublicKey, bool) {
	return func(mint string) (solanago.PublicKey, bool) {
		o, err := st.Opportunities.GetLatestByMint(mint)
		if err != nil || o == nil || o.BondingCurveAddr == "" {
			return solanago.PublicKey{}, false
		}
		pk, err := solanago.PublicKeyFromBase58(o.BondingCurveAddr)
		if err != nil {
			return solanago.PublicKey{}, false
		}
		return pk, true
	}
}
