package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"raptor/internal/models"
)

// OpportunityRepository works with the opportunities table.
type OpportunityRepository struct {
	db *sql.DB
}

const opportunityColumns = `
	id, source, token_mint, name, symbol, deployer, bonding_curve_addr,
	initial_liquidity_sol, score, reasons, status, created_at, updated_at`

func scanOpportunity(scan func(...interface{}) error) (*models.Opportunity, error) {
	o := &models.Opportunity{}
	err := scan(
		&o.ID, &o.Source, &o.TokenMint, &o.Name, &o.Symbol, &o.Deployer, &o.BondingCurveAddr,
		&o.InitialLiquiditySol, &o.Score, pq.Array(&o.Reasons), &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// UpsertNew inserts a NEW opportunity keyed by (source, mint). If a row
// already exists its status is left untouched (spec.md §4.2 step 1: "If a
// row exists, leave its status alone unless we are advancing it") — only
// the mutable descriptive fields are refreshed.
func (r *OpportunityRepository) UpsertNew(o *models.Opportunity) (*models.Opportunity, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Status == "" {
		o.Status = models.OpportunityNew
	}

	query := `
		INSERT INTO opportunities (` + opportunityColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (source, token_mint) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			deployer = EXCLUDED.deployer,
			bonding_curve_addr = EXCLUDED.bonding_curve_addr,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + opportunityColumns

	row := r.db.QueryRow(query,
		o.ID, o.Source, o.TokenMint, o.Name, o.Symbol, o.Deployer, o.BondingCurveAddr,
		o.InitialLiquiditySol, o.Score, pq.Array(o.Reasons), o.Status, o.CreatedAt, o.UpdatedAt,
	)
	return scanOpportunity(row.Scan)
}

// GetByID returns an opportunity by id.
func (r *OpportunityRepository) GetByID(id uuid.UUID) (*models.Opportunity, error) {
	row := r.db.QueryRow(`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	o, err := scanOpportunity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// GetLatestByMint returns the most recently seen opportunity for a mint,
// used to resolve a mint back to its bonding curve address for the
// graduation check, which needs the curve account, not just the mint.
func (r *OpportunityRepository) GetLatestByMint(mint string) (*models.Opportunity, error) {
	row := r.db.QueryRow(
		`SELECT `+opportunityColumns+` FROM opportunities WHERE token_mint = $1 ORDER BY created_at DESC LIMIT 1`,
		mint,
	)
	o, err := scanOpportunity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// UpdateScore persists the scoring rule set's output (spec.md §4.2 step 6).
func (r *OpportunityRepository) UpdateScore(id uuid.UUID, score int, reasons []string) error {
	_, err := r.db.Exec(
		`UPDATE opportunities SET score = $1, reasons = $2, updated_at = $3 WHERE id = $4`,
		score, pq.Array(reasons), time.Now(), id,
	)
	return err
}

// CountByDeployer counts prior opportunities from deployer, excluding
// excludeID, used by the "new_deployer" scoring rule.
func (r *OpportunityRepository) CountByDeployer(deployer string, excludeID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT count(*) FROM opportunities WHERE deployer = $1 AND id != $2`,
		deployer, excludeID,
	).Scan(&n)
	return n, err
}

// AdvanceStatus performs a guarded status transition: the UPDATE only
// matches rows currently in `from`, so a single-row affected-rows count
// is the atomic "did I win the race" boolean spec.md §6 requires from
// this kind of store function.
func (r *OpportunityRepository) AdvanceStatus(id uuid.UUID, from, to models.OpportunityStatus) (bool, error) {
	if !models.CanTransition(from, to) {
		return false, errors.New("store: illegal opportunity transition " + string(from) + " -> " + string(to))
	}
	res, err := r.db.Exec(
		`UPDATE opportunities SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now(), id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
