// Package store is the sole shared-resource boundary for RAPTOR (spec.md
// §5: "The store is the sole shared resource"). It wraps database/sql
// with github.com/lib/pq exactly as the teacher's internal/repository
// package does — no ORM, parameterized queries, typed not-found errors.
//
// Mutations that cross invariants (claim job, trigger exit, graduate
// position, upsert opportunity) are exposed as single atomic SQL
// statements (UPDATE ... WHERE <guard> RETURNING ...) rather than
// read-modify-write round trips, so a single-row affected-rows check is
// the race-outcome boolean spec.md §6 calls a "serializable store
// function".
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"raptor/internal/config"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store bundles a *sql.DB with every per-entity repository, mirroring the
// teacher's pattern of one struct per table under internal/repository,
// but gathered behind one constructor so cmd/ wiring stays small.
type Store struct {
	db *sql.DB

	Users             *UserRepository
	Wallets           *WalletRepository
	Strategies        *StrategyRepository
	Opportunities     *OpportunityRepository
	TradeJobs         *TradeJobRepository
	Positions         *PositionRepository
	Notifications     *NotificationRepository
	LaunchCandidates  *LaunchCandidateRepository
}

// Open connects to Postgres using cfg and wires up every repository.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password, cfg.SSLMode,
	)

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return New(db), nil
}

// New wires repositories around an already-opened *sql.DB. Split out from
// Open so tests can construct a Store around a go-sqlmock connection.
func New(db *sql.DB) *Store {
	return &Store{
		db:               db,
		Users:            &UserRepository{db: db},
		Wallets:          &WalletRepository{db: db},
		Strategies:       &StrategyRepository{db: db},
		Opportunities:    &OpportunityRepository{db: db},
		TradeJobs:        &TradeJobRepository{db: db},
		Positions:        &PositionRepository{db: db},
		Notifications:    &NotificationRepository{db: db},
		LaunchCandidates: &LaunchCandidateRepository{db: db},
	}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for callers that need a transaction
// spanning more than one repository (none currently do; every store
// function below is a single atomic statement).
func (s *Store) DB() *sql.DB { return s.db }
