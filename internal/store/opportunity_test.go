package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"raptor/internal/models"
)

func TestGetLatestByMintReturnsMostRecentRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := New(db)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "source", "token_mint", "name", "symbol", "deployer", "bonding_curve_addr",
		"initial_liquidity_sol", "score", "reasons", "status", "created_at", "updated_at",
	}).AddRow(id, "pump.fun", "So11111111111111111111111111111111111111112", "Foo", "FOO", "deployer1", "curve1",
		1.5, 10, pq.Array([]string{"r1"}), models.OpportunityNew, now, now)

	mock.ExpectQuery(`SELECT .* FROM opportunities WHERE token_mint = \$1 ORDER BY created_at DESC LIMIT 1`).
		WithArgs("So11111111111111111111111111111111111111112").
		WillReturnRows(rows)

	o, err := st.Opportunities.GetLatestByMint("So11111111111111111111111111111111111111112")
	if err != nil {
		t.Fatalf("GetLatestByMint: %v", err)
	}
	if o.BondingCurveAddr != "curve1" {
		t.Fatalf("bonding curve addr = %q", o.BondingCurveAddr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetLatestByMintReturnsErrNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := New(db)

	mock.ExpectQuery(`SELECT .* FROM opportunities WHERE token_mint = \$1 ORDER BY created_at DESC LIMIT 1`).
		WithArgs("unknown-mint").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "source", "token_mint", "name", "symbol", "deployer", "bonding_curve_addr",
			"initial_liquidity_sol", "score", "reasons", "status", "created_at", "updated_at",
		}))

	_, err = st.Opportunities.GetLatestByMint("unknown-mint")
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
