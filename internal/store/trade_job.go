package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"raptor/internal/models"
)

// TradeJobRepository works with the trade_jobs table.
type TradeJobRepository struct {
	db *sql.DB
}

// ErrDuplicateJob is returned when a job's idempotency key already exists
// (spec.md §3: "exactly one row per (user, intent) via idempotency key").
var ErrDuplicateJob = errors.New("store: duplicate idempotency key")

const tradeJobColumns = `
	id, idempotency_key, strategy_id, user_telegram_id, opportunity_id, chain,
	action, payload, priority, status, claimed_by, claimed_at, attempts,
	last_error, created_at, updated_at`

func scanTradeJob(scan func(...interface{}) error) (*models.TradeJob, error) {
	j := &models.TradeJob{}
	var payload []byte
	err := scan(
		&j.ID, &j.IdempotencyKey, &j.StrategyID, &j.UserTelegramID, &j.OpportunityID, &j.Chain,
		&j.Action, &payload, &j.Priority, &j.Status, &j.ClaimedBy, &j.ClaimedAt, &j.Attempts,
		&j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &j.Payload); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Create inserts a job. A conflicting idempotency key is treated as
// success-for-the-producer per spec.md §7 (Kind DEDUPE): the caller
// should not hard-fail on ErrDuplicateJob.
func (r *TradeJobRepository) Create(j *models.TradeJob) error {
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	if j.Status == "" {
		j.Status = models.JobPending
	}

	payload, err := json.Marshal(j.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO trade_jobs (
			idempotency_key, strategy_id, user_telegram_id, opportunity_id, chain,
			action, payload, priority, status, attempts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id`

	err = r.db.QueryRow(query,
		j.IdempotencyKey, j.StrategyID, j.UserTelegramID, j.OpportunityID, j.Chain,
		j.Action, payload, j.Priority, j.Status, j.Attempts, j.CreatedAt, j.UpdatedAt,
	).Scan(&j.ID)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateJob
	}
	return err
}

// ClaimNext is the `claim_next_job(worker_id, limit)` store function from
// spec.md §6: atomically moves up to `limit` PENDING rows (or rows
// CLAIMED past their lease) to CLAIMED under workerID, returning the
// claimed rows. Implemented as a single UPDATE ... RETURNING so two
// workers can never observe the same row in CLAIMED.
func (r *TradeJobRepository) ClaimNext(ctx context.Context, workerID string, limit int, lease time.Duration) ([]*models.TradeJob, error) {
	query := `
		UPDATE trade_jobs
		SET status = $1, claimed_by = $2, claimed_at = $3, updated_at = $3
		WHERE id IN (
			SELECT id FROM trade_jobs
			WHERE status = $4
			   OR (status = $1 AND claimed_at < $5)
			ORDER BY priority ASC, created_at ASC
			LIMIT $6
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + tradeJobColumns

	now := time.Now()
	rows, err := r.db.QueryContext(ctx, query,
		models.JobClaimed, workerID, now, models.JobPending, now.Add(-lease), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TradeJob
	for rows.Next() {
		j, err := scanTradeJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkExecuting advances a claimed job to EXECUTING, guarded on the
// claimant owning the row.
func (r *TradeJobRepository) MarkExecuting(id int64, workerID string) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE trade_jobs SET status = $1, updated_at = $2 WHERE id = $3 AND claimed_by = $4 AND status = $5`,
		models.JobExecuting, time.Now(), id, workerID, models.JobClaimed,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Complete marks a job COMPLETED.
func (r *TradeJobRepository) Complete(id int64) error {
	_, err := r.db.Exec(`UPDATE trade_jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		models.JobCompleted, time.Now(), id)
	return err
}

// Fail increments attempts and sets last_error; marks FAILED once
// maxAttempts is reached (FAILED is terminal until a manual
// emergency-sell escalation, spec.md §4.3).
func (r *TradeJobRepository) Fail(id int64, errMsg string, maxAttempts int) error {
	query := `
		UPDATE trade_jobs
		SET attempts = attempts + 1,
		    last_error = $1,
		    status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE $4 END,
		    claimed_by = CASE WHEN attempts + 1 >= $2 THEN claimed_by ELSE NULL END,
		    updated_at = $5
		WHERE id = $6`
	_, err := r.db.Exec(query, errMsg, maxAttempts, models.JobFailed, models.JobPending, time.Now(), id)
	return err
}

// GetByID returns a job by id.
func (r *TradeJobRepository) GetByID(id int64) (*models.TradeJob, error) {
	row := r.db.QueryRow(`SELECT `+tradeJobColumns+` FROM trade_jobs WHERE id = $1`, id)
	j, err := scanTradeJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}
