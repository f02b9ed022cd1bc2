// Package audit keeps a durable, append-only trade log alongside the
// relational store: one JSON line per fill, plus a bounded in-memory
// ring for fast recent-activity lookups (e.g. an admin "last N trades"
// view). Grounded on the solana-bot worker pool's monitor.TradeHistory
// (other_examples/RovshanMuradov-solana-bot), which pairs a capped
// in-memory slice with an on-disk log for exactly this purpose.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"raptor/internal/models"
	"raptor/pkg/logging"
)

// Entry is one logged fill, independent of the positions table's mutable
// bookkeeping — a position's row changes in place as it crosses states;
// an Entry is one immutable fact about an execution attempt.
type Entry struct {
	Timestamp      time.Time          `json:"timestamp"`
	UserTelegramID int64              `json:"user_telegram_id"`
	Chain          models.Chain       `json:"chain"`
	TokenMint      string             `json:"token_mint"`
	Action         models.JobAction   `json:"action"`
	Trigger        models.ExitTrigger `json:"trigger,omitempty"`
	AmountSol      float64            `json:"amount_sol"`
	Price          float64            `json:"price"`
	TxSignature    string             `json:"tx_signature,omitempty"`
	Success        bool               `json:"success"`
	ErrorMsg       string             `json:"error_msg,omitempty"`
}

// TradeLog appends Entry rows to a file and keeps the most recent
// maxInMemory of them for cheap reads.
type TradeLog struct {
	mu          sync.Mutex
	file        *os.File
	ring        []Entry
	maxInMemory int
	next        int
	filled      bool
	log         *logging.Logger
}

// NewTradeLog opens (creating if needed) dir/trades.jsonl for appending
// and prepares a ring buffer of maxInMemory entries.
func NewTradeLog(dir string, maxInMemory int, log *logging.Logger) (*TradeLog, error) {
	if maxInMemory <= 0 {
		maxInMemory = 1000
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "trades.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open log file: %w", err)
	}
	return &TradeLog{file: f, ring: make([]Entry, maxInMemory), maxInMemory: maxInMemory, log: log}, nil
}

// Record appends e to the on-disk log and the in-memory ring. A write
// failure is logged but never propagated: the trade itself already
// completed, and losing an audit line must not fail the pipeline.
func (t *TradeLog) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	t.mu.Lock()
	t.ring[t.next] = e
	t.next = (t.next + 1) % t.maxInMemory
	if t.next == 0 {
		t.filled = true
	}
	t.mu.Unlock()

	line, err := json.Marshal(e)
	if err != nil {
		if t.log != nil {
			t.log.Warn("audit: marshal entry failed", logging.Err(err))
		}
		return
	}
	line = append(line, '\n')
	if _, err := t.file.Write(line); err != nil && t.log != nil {
		t.log.Warn("audit: write entry failed", logging.Err(err))
	}
}

// Recent returns up to n of the most recently recorded entries, newest
// first.
func (t *TradeLog) Recent(n int) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := t.next
	if t.filled {
		size = t.maxInMemory
	}
	if n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.next - 1 - i + t.maxInMemory) % t.maxInMemory
		out = append(out, t.ring[idx])
	}
	return out
}

// Close flushes and closes the underlying file.
func (t *TradeLog) Close() error {
	return t.file.Close()
}
