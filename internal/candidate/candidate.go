// Package candidate implements the Candidate Consumer (spec.md §4.7): an
// optional alternate signal path that turns externally-fed launch
// candidates into opportunities using the same matching rules as the
// on-chain monitor. Grounded on the teacher's internal/bot/engine.go
// ticker-poll shape, reused here over a store table instead of an
// in-memory pair list since candidates arrive from an external, at-least-
// once feed rather than a live subscription.
package candidate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"raptor/internal/models"
	"raptor/internal/opportunity"
	"raptor/internal/solana"
	"raptor/internal/store"
	"raptor/pkg/logging"
)

// Config tunes the poll cadence and staleness window.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAge       time.Duration // candidates older than this are rejected, not just expired ones
}

// DefaultConfig matches spec.md §4.2's on-chain detection latency target
// loosely: candidates are a slower, best-effort signal, so a few seconds
// of poll latency is acceptable.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    25,
		MaxAge:       10 * time.Minute,
	}
}

// Engine polls launch_candidates and folds matches into opportunities.
type Engine struct {
	store *store.Store
	opp   *opportunity.Engine
	chain models.Chain
	cfg   Config
	log   *logging.Logger
}

// New builds a candidate consumer over an existing opportunity engine so
// scoring, strategy matching, and job materialization stay in one place.
func New(st *store.Store, opp *opportunity.Engine, chain models.Chain, cfg Config, log *logging.Logger) *Engine {
	return &Engine{store: st, opp: opp, chain: chain, cfg: cfg, log: log}
}

// Start runs the poll loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	now := time.Now()
	candidates, err := e.store.LaunchCandidates.ListPending(now, e.cfg.BatchSize)
	if err != nil {
		if e.log != nil {
			e.log.Warn("candidate: list pending failed", logging.Err(err))
		}
		return
	}
	for _, c := range candidates {
		e.process(ctx, c, now)
	}
}

func (e *Engine) process(ctx context.Context, c *models.LaunchCandidate, now time.Time) {
	if now.Sub(c.CreatedAt) > e.cfg.MaxAge {
		e.reject(c.ID, "stale")
		return
	}

	mint, err := solana.ParseMint(c.Mint)
	if err != nil {
		e.reject(c.ID, "invalid mint")
		return
	}

	event := solana.CreateEvent{
		Mint:      mint,
		Timestamp: c.CreatedAt,
	}

	if err := e.opp.Process(ctx, event, e.chain); err != nil {
		if e.log != nil {
			e.log.Warn("candidate: opportunity processing failed", logging.Mint(c.Mint), logging.Err(err))
		}
		e.reject(c.ID, fmt.Sprintf("processing error: %v", err))
		return
	}

	if err := e.store.LaunchCandidates.SetStatus(c.ID, models.CandidateAccepted, ""); err != nil && e.log != nil {
		e.log.Warn("candidate: set accepted failed", logging.Err(err))
	}
}

func (e *Engine) reject(id uuid.UUID, reason string) {
	if err := e.store.LaunchCandidates.SetStatus(id, models.CandidateRejected, reason); err != nil && e.log != nil {
		e.log.Warn("candidate: set rejected failed", logging.Err(err))
	}
}
