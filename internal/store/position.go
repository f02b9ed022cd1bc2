package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"raptor/internal/models"
)

// PositionRepository works with the positions table.
type PositionRepository struct {
	db *sql.DB
}

const positionColumns = `
	id, user_telegram_id, strategy_id, chain, token_mint, token_symbol, bonding_curve,
	entry_tx_sig, entry_price, entry_cost_sol, size_tokens, token_decimals,
	lifecycle_state, trigger_state, tp_price, sl_price, peak_price,
	trailing_stop_price, partial_exit_taken, exit_levels_hit, moon_bag_amount,
	realized_pnl_sol, last_trigger, last_trigger_price, opened_at, closed_at`

func scanPosition(scan func(...interface{}) error) (*models.Position, error) {
	p := &models.Position{}
	err := scan(
		&p.ID, &p.UserTelegramID, &p.StrategyID, &p.Chain, &p.TokenMint, &p.TokenSymbol, &p.BondingCurve,
		&p.EntryTxSig, &p.EntryPrice, &p.EntryCostSol, &p.SizeTokens, &p.TokenDecimals,
		&p.LifecycleState, &p.TriggerState, &p.TPPrice, &p.SLPrice, &p.PeakPrice,
		&p.TrailingStopPrice, &p.PartialExitTaken, &p.ExitLevelsHit, &p.MoonBagAmount,
		&p.RealizedPnlSol, &p.LastTrigger, &p.LastTriggerPrice, &p.OpenedAt, &p.ClosedAt,
	)
	return p, err
}

// Create inserts an opened position, entered from a completed BUY job.
func (r *PositionRepository) Create(p *models.Position) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.OpenedAt = time.Now()
	if p.LifecycleState == "" {
		p.LifecycleState = models.LifecyclePreGraduation
	}
	if p.TriggerState == "" {
		p.TriggerState = models.TriggerMonitoring
	}
	p.PeakPrice = p.EntryPrice

	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`

	_, err := r.db.Exec(query,
		p.ID, p.UserTelegramID, p.StrategyID, p.Chain, p.TokenMint, p.TokenSymbol, p.BondingCurve,
		p.EntryTxSig, p.EntryPrice, p.EntryCostSol, p.SizeTokens, p.TokenDecimals,
		p.LifecycleState, p.TriggerState, p.TPPrice, p.SLPrice, p.PeakPrice,
		p.TrailingStopPrice, p.PartialExitTaken, p.ExitLevelsHit, p.MoonBagAmount,
		p.RealizedPnlSol, p.LastTrigger, p.LastTriggerPrice, p.OpenedAt, p.ClosedAt,
	)
	return err
}

// GetByID returns a position by id.
func (r *PositionRepository) GetByID(id uuid.UUID) (*models.Position, error) {
	row := r.db.QueryRow(`SELECT `+positionColumns+` FROM positions WHERE id = $1`, id)
	p, err := scanPosition(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListOpenByUser returns every non-closed position for a user, used by the
// TP/SL engine's per-user evaluation loop (spec.md §4.4).
func (r *PositionRepository) ListOpenByUser(userTelegramID int64) ([]*models.Position, error) {
	rows, err := r.db.Query(
		`SELECT `+positionColumns+` FROM positions WHERE user_telegram_id = $1 AND lifecycle_state != $2`,
		userTelegramID, models.LifecycleClosed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListMonitoring returns every position still eligible for price
// evaluation (spec.md §4.4: MONITORING trigger state, not yet closed).
func (r *PositionRepository) ListMonitoring() ([]*models.Position, error) {
	rows, err := r.db.Query(
		`SELECT `+positionColumns+` FROM positions WHERE trigger_state = $1 AND lifecycle_state != $2`,
		models.TriggerMonitoring, models.LifecycleClosed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePeak raises peak_price and the derived trailing stop, monotone
// non-decreasing (spec.md §9 open question: no interpolation, a simple
// max() inside the guarded UPDATE).
func (r *PositionRepository) UpdatePeak(id uuid.UUID, price float64, trailingStop float64) error {
	_, err := r.db.Exec(
		`UPDATE positions SET peak_price = GREATEST(peak_price, $1), trailing_stop_price = $2 WHERE id = $3`,
		price, trailingStop, id,
	)
	return err
}

// TriggerExitAtomically is the store function from spec.md §6 that moves a
// position from MONITORING to TRIGGERED, recording which trigger fired.
// The guard on trigger_state = MONITORING makes the affected-row count the
// race-outcome boolean: only one evaluator can ever win it for a given
// position.
func (r *PositionRepository) TriggerExitAtomically(id uuid.UUID, trigger models.ExitTrigger, price float64) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE positions SET trigger_state = $1, last_trigger = $2, last_trigger_price = $3 WHERE id = $4 AND trigger_state = $5`,
		models.TriggerTriggered, trigger, price, id, models.TriggerMonitoring,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkExecuting advances TRIGGERED -> EXECUTING, guarded the same way.
func (r *PositionRepository) MarkExecuting(id uuid.UUID) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE positions SET trigger_state = $1 WHERE id = $2 AND trigger_state = $3`,
		models.TriggerExecuting, id, models.TriggerTriggered,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkTriggerCompleted closes out a successful exit. A full exit (not a
// partial take-profit leg) also closes the position's lifecycle.
func (r *PositionRepository) MarkTriggerCompleted(id uuid.UUID, realizedPnlSol float64, fullyClosed bool) error {
	now := time.Now()
	if fullyClosed {
		_, err := r.db.Exec(
			`UPDATE positions SET trigger_state = $1, lifecycle_state = $2, realized_pnl_sol = realized_pnl_sol + $3, closed_at = $4 WHERE id = $5`,
			models.TriggerCompleted, models.LifecycleClosed, realizedPnlSol, now, id,
		)
		return err
	}
	_, err := r.db.Exec(
		`UPDATE positions SET trigger_state = $1, partial_exit_taken = true, exit_levels_hit = exit_levels_hit + 1, realized_pnl_sol = realized_pnl_sol + $2 WHERE id = $3`,
		models.TriggerMonitoring, realizedPnlSol, id,
	)
	return err
}

// MarkTriggerFailed moves a position's exit to FAILED, terminal until a
// manual emergency-sell escalation (spec.md §4.3 SELL pipeline step 3:
// "On failure, set trigger_state = FAILED; FAILED is terminal until
// manually escalated via emergency-sell").
func (r *PositionRepository) MarkTriggerFailed(id uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE positions SET trigger_state = $1 WHERE id = $2`,
		models.TriggerFailed, id,
	)
	return err
}

// GraduatePositionAtomically flips PRE_GRADUATION -> POST_GRADUATION once
// the bonding curve completes (spec.md §4.1/§4.4). Guarded the same
// race-outcome way as the trigger transitions.
func (r *PositionRepository) GraduatePositionAtomically(id uuid.UUID) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE positions SET lifecycle_state = $1 WHERE id = $2 AND lifecycle_state = $3`,
		models.LifecyclePostGraduation, id, models.LifecyclePreGraduation,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
