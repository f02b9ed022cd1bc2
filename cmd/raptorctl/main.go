// Command raptorctl is RAPTOR's operational surface: a debug/admin HTTP
// server (health, Prometheus metrics, pprof, read-only store/trade-log
// inspection) and a small set of one-shot subcommands for config
// validation and pending launch-candidate inspection from the shell. It holds no trading
// logic of its own — hunter and executor own that.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raptor/internal/adminapi"
	"raptor/internal/audit"
	"raptor/internal/config"
	"raptor/internal/store"
	"raptor/internal/websocket"
	"raptor/pkg/logging"
)

func main() {
	if len(os.Args) > 1 {
		runSubcommand(os.Args[1], os.Args[2:])
		return
	}
	runServer()
}

func runSubcommand(cmd string, args []string) {
	switch cmd {
	case "validate-config":
		if _, err := config.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("config OK")
	case "jobs":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		st, err := store.Open(cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open store: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		candidates, err := st.LaunchCandidates.ListPending(time.Now(), 50)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list candidates: %v\n", err)
			os.Exit(1)
		}
		for _, c := range candidates {
			fmt.Printf("%s\t%s\t%s\texpires=%s\n", c.ID, c.Mint, c.Status, c.ExpiresAt.Format(time.RFC3339))
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q (want validate-config|jobs)\n", cmd)
		os.Exit(2)
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		logging.GetGlobalLogger().Fatal("raptorctl: load config", logging.Err(err))
	}

	lg := logging.InitGlobalLogger(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithComponent("raptorctl")

	st, err := store.Open(cfg.Database)
	if err != nil {
		lg.Fatal("open store", logging.Err(err))
	}
	defer st.Close()

	trades, err := audit.NewTradeLog("data/trades", 1000, lg.WithComponent("audit"))
	if err != nil {
		lg.Fatal("open trade log", logging.Err(err))
	}
	defer trades.Close()

	hub := websocket.NewHub(lg.WithComponent("stream"))
	go hub.Run()

	deps := &adminapi.Dependencies{
		Store:         st,
		Trades:        trades,
		Log:           lg,
		Hub:           hub,
		DebugUsername: cfg.Admin.DebugUsername,
		DebugPassword: cfg.Admin.DebugPassword,
		Env:           cfg.Admin.Env,
	}

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	go adminapi.StartStreamPublisher(streamCtx, deps, 2*time.Second)

	router := adminapi.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Admin.Host, cfg.Admin.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("raptorctl admin server starting", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("admin server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("raptorctl shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Warn("admin server forced shutdown", logging.Err(err))
	}
	lg.Info("raptorctl exited")
}
