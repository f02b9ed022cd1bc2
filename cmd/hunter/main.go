// Command hunter watches the chain, scores launches, and manages open
// positions' exit triggers, running the monitor, opportunity engine,
// candidate promoter and TP/SL engine as one process. It never submits a
// transaction itself — qualifying opportunities and exit triggers are
// handed off to the executor via the trade_jobs table.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/candidate"
	"raptor/internal/config"
	"raptor/internal/jupiter"
	"raptor/internal/metadata"
	"raptor/internal/models"
	"raptor/internal/monitor"
	"raptor/internal/opportunity"
	"raptor/internal/rpc"
	"raptor/internal/solana"
	"raptor/internal/store"
	"raptor/internal/tpsl"
	"raptor/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.GetGlobalLogger().Fatal("hunter: load config", logging.Err(err))
	}

	lg := logging.InitGlobalLogger(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithComponent("hunter")

	st, err := store.Open(cfg.Database)
	if err != nil {
		lg.Fatal("open store", logging.Err(err))
	}
	defer st.Close()

	programID, err := solanago.PublicKeyFromBase58(cfg.Solana.LaunchpadProgramID)
	if err != nil {
		lg.Fatal("parse launchpad program id", logging.Err(err))
	}

	pool := rpc.NewPool(cfg.Solana.RPCPrimaryURL, cfg.Solana.RPCFallbackURLs, lg)
	rpcClient, err := pool.Best()
	if err != nil {
		lg.Fatal("no healthy rpc endpoint", logging.Err(err))
	}

	curves := rpc.NewCurveReader(pool)
	graduated := rpc.NewGraduationTracker(curves, curveOfMint(st))
	jupClient := jupiter.NewClient()
	prices := tpsl.NewPriceReader(curves, jupClient)
	fetcher := metadata.NewFetcher()

	oppEngine := opportunity.New(st, fetcher, curves, opportunity.DefaultRules, lg.WithComponent("opportunity"))

	mon := monitor.New(programID, cfg.Solana.WSURL, rpcClient, solana.PumpFunLayout, lg.WithComponent("monitor"))
	mon.RegisterHandler(oppEngine.Handle)

	candCfg := candidate.DefaultConfig()
	candCfg.PollInterval = cfg.Hunter.CandidatePollInterval
	candCfg.MaxAge = cfg.Hunter.CandidateMaxAge
	candEngine := candidate.New(st, oppEngine, models.ChainSolana, candCfg, lg.WithComponent("candidate"))

	tpslCfg := tpsl.DefaultConfig()
	tpslCfg.MaxConcurrentExits = cfg.Hunter.MaxConcurrentExits
	tpslEngine := tpsl.New(st, prices, graduated, tpslCfg, lg.WithComponent("tpsl"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mon.Start(ctx); err != nil {
		lg.Fatal("start monitor", logging.Err(err))
	}
	candEngine.Start(ctx)
	tpslEngine.Start(ctx)

	lg.Info("hunter started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("hunter shutting down")
	cancel()

	if err := mon.Stop(); err != nil {
		lg.Warn("stop monitor", logging.Err(err))
	}

	lg.Info("hunter exited")
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
