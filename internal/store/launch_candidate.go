package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"raptor/internal/models"
)

// LaunchCandidateRepository works with the launch_candidates table.
type LaunchCandidateRepository struct {
	db *sql.DB
}

const launchCandidateColumns = `
	id, mint, source, status, reason, expires_at, created_at`

func scanLaunchCandidate(scan func(...interface{}) error) (*models.LaunchCandidate, error) {
	c := &models.LaunchCandidate{}
	err := scan(&c.ID, &c.Mint, &c.Source, &c.Status, &c.Reason, &c.ExpiresAt, &c.CreatedAt)
	return c, err
}

// Upsert inserts a candidate keyed by (mint, source), per spec.md §4.7:
// a given external feed reports a mint at most once while it is still
// pending. A repeat report for the same (mint, source) only refreshes
// expires_at; status and reason are left as they are.
func (r *LaunchCandidateRepository) Upsert(c *models.LaunchCandidate) (*models.LaunchCandidate, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = models.CandidateNew
	}

	query := `
		INSERT INTO launch_candidates (` + launchCandidateColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (mint, source) DO UPDATE SET expires_at = EXCLUDED.expires_at
		RETURNING ` + launchCandidateColumns

	row := r.db.QueryRow(query, c.ID, c.Mint, c.Source, c.Status, c.Reason, c.ExpiresAt, c.CreatedAt)
	return scanLaunchCandidate(row.Scan)
}

// ListPending returns unexpired NEW candidates for the consumer loop
// (spec.md §4.7).
func (r *LaunchCandidateRepository) ListPending(now time.Time, limit int) ([]*models.LaunchCandidate, error) {
	rows, err := r.db.Query(
		`SELECT `+launchCandidateColumns+` FROM launch_candidates
		 WHERE status = $1 AND expires_at > $2
		 ORDER BY created_at ASC
		 LIMIT $3`,
		models.CandidateNew, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LaunchCandidate
	for rows.Next() {
		c, err := scanLaunchCandidate(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetStatus advances a candidate to accepted/rejected/expired.
func (r *LaunchCandidateRepository) SetStatus(id uuid.UUID, status models.LaunchCandidateStatus, reason string) error {
	_, err := r.db.Exec(
		`UPDATE launch_candidates SET status = $1, reason = $2 WHERE id = $3`,
		status, reason, id,
	)
	return err
}

// GetByID returns a candidate by id.
func (r *LaunchCandidateRepository) GetByID(id uuid.UUID) (*models.LaunchCandidate, error) {
	row := r.db.QueryRow(`SELECT `+launchCandidateColumns+` FROM launch_candidates WHERE id = $1`, id)
	c, err := scanLaunchCandidate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}
