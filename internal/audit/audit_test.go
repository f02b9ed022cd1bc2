package audit

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"raptor/internal/models"
)

func TestTradeLog_RecordAndRecent(t *testing.T) {
	dir := t.TempDir()
	tl, err := NewTradeLog(dir, 2, nil)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	defer tl.Close()

	tl.Record(Entry{TokenMint: "mint-1", Action: models.JobActionBuy, Success: true})
	tl.Record(Entry{TokenMint: "mint-2", Action: models.JobActionSell, Success: true})
	tl.Record(Entry{TokenMint: "mint-3", Action: models.JobActionSell, Success: false})

	recent := tl.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("Recent(10) with ring size 2 = %d entries, want 2", len(recent))
	}
	if recent[0].TokenMint != "mint-3" {
		t.Fatalf("Recent()[0] = %s, want mint-3 (newest first)", recent[0].TokenMint)
	}
	if recent[1].TokenMint != "mint-2" {
		t.Fatalf("Recent()[1] = %s, want mint-2", recent[1].TokenMint)
	}
}

func TestTradeLog_PersistsToFile(t *testing.T) {
	dir := t.TempDir()
	tl, err := NewTradeLog(dir, 10, nil)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}

	tl.Record(Entry{TokenMint: "mint-1", Action: models.JobActionBuy, Success: true})
	tl.Record(Entry{TokenMint: "mint-2", Action: models.JobActionSell, Success: true})
	tl.Close()

	f, err := os.Open(filepath.Join(dir, "trades.jsonl"))
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 2 {
		t.Fatalf("log file has %d lines, want 2", lines)
	}
}

func TestTradeLog_RecentBeforeFull(t *testing.T) {
	dir := t.TempDir()
	tl, err := NewTradeLog(dir, 5, nil)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	defer tl.Close()

	tl.Record(Entry{TokenMint: "only-one", Success: true})

	recent := tl.Recent(10)
	if len(recent) != 1 {
		t.Fatalf("Recent(10) with one entry in an unfilled ring = %d, want 1", len(recent))
	}
}
