package candidate

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"raptor/internal/models"
	"raptor/internal/store"
)

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.New(db), mock
}

func TestProcess_RejectsStaleCandidate(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	c := &models.LaunchCandidate{ID: id, Mint: "So11111111111111111111111111111111111111112", CreatedAt: time.Now().Add(-time.Hour)}

	mock.ExpectExec(`UPDATE launch_candidates SET status`).
		WithArgs(models.CandidateRejected, "stale", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &Engine{store: st, chain: models.ChainSolana, cfg: Config{MaxAge: time.Minute}}
	e.process(nil, c, time.Now())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProcess_RejectsInvalidMint(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	c := &models.LaunchCandidate{ID: id, Mint: "not-a-valid-base58-pubkey", CreatedAt: time.Now()}

	mock.ExpectExec(`UPDATE launch_candidates SET status`).
		WithArgs(models.CandidateRejected, "invalid mint", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &Engine{store: st, chain: models.ChainSolana, cfg: Config{MaxAge: time.Hour}}
	e.process(nil, c, time.Now())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
