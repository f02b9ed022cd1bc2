package store

import (
	"database/sql"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"raptor/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StrategyRepository works with the strategies table.
type StrategyRepository struct {
	db *sql.DB
}

// Create inserts a new strategy.
func (r *StrategyRepository) Create(s *models.Strategy) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now

	trailing, err := json.Marshal(s.Trailing)
	if err != nil {
		return err
	}
	dcaLadder, err := json.Marshal(s.DCALadder)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO strategies (
			id, user_telegram_id, chain, enabled, auto_execute, min_score,
			allowed_sources, token_denylist, deployer_denylist, max_per_trade_sol,
			slippage_bps, priority_fee_lamports, take_profit_bps, stop_loss_bps,
			max_hold_seconds, trailing, moon_bag_bps, dca_ladder, snipe_mode, min_liquidity_sol,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`

	_, err = r.db.Exec(query,
		s.ID, s.UserTelegramID, s.Chain, s.Enabled, s.AutoExecute, s.MinScore,
		pq.Array(s.AllowedSources), pq.Array(s.TokenDenylist), pq.Array(s.DeployerDenylist),
		s.MaxPerTradeSol, s.SlippageBps, s.PriorityFeeLamports, s.TakeProfitBps, s.StopLossBps,
		int64(s.MaxHold.Seconds()), trailing, s.MoonBagBps, dcaLadder, s.SnipeMode, s.MinLiquiditySol,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func scanStrategy(scan func(...interface{}) error) (*models.Strategy, error) {
	s := &models.Strategy{}
	var maxHoldSeconds int64
	var trailing []byte
	var dcaLadder []byte

	err := scan(
		&s.ID, &s.UserTelegramID, &s.Chain, &s.Enabled, &s.AutoExecute, &s.MinScore,
		pq.Array(&s.AllowedSources), pq.Array(&s.TokenDenylist), pq.Array(&s.DeployerDenylist),
		&s.MaxPerTradeSol, &s.SlippageBps, &s.PriorityFeeLamports, &s.TakeProfitBps, &s.StopLossBps,
		&maxHoldSeconds, &trailing, &s.MoonBagBps, &dcaLadder, &s.SnipeMode, &s.MinLiquiditySol,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.MaxHold = time.Duration(maxHoldSeconds) * time.Second
	if len(trailing) > 0 {
		if err := json.Unmarshal(trailing, &s.Trailing); err != nil {
			return nil, err
		}
	}
	if len(dcaLadder) > 0 {
		if err := json.Unmarshal(dcaLadder, &s.DCALadder); err != nil {
			return nil, err
		}
	}
	return s, nil
}

const strategyColumns = `
	id, user_telegram_id, chain, enabled, auto_execute, min_score,
	allowed_sources, token_denylist, deployer_denylist, max_per_trade_sol,
	slippage_bps, priority_fee_lamports, take_profit_bps, stop_loss_bps,
	max_hold_seconds, trailing, moon_bag_bps, dca_ladder, snipe_mode, min_liquidity_sol,
	created_at, updated_at`

// GetByID returns a strategy by id.
func (r *StrategyRepository) GetByID(id uuid.UUID) (*models.Strategy, error) {
	row := r.db.QueryRow(`SELECT `+strategyColumns+` FROM strategies WHERE id = $1`, id)
	s, err := scanStrategy(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// ListEnabledByChain returns every enabled strategy for a chain, used by
// the opportunity engine (spec.md §4.2 step 2).
func (r *StrategyRepository) ListEnabledByChain(chain models.Chain) ([]*models.Strategy, error) {
	rows, err := r.db.Query(`SELECT `+strategyColumns+` FROM strategies WHERE chain = $1 AND enabled = true`, chain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Strategy
	for rows.Next() {
		s, err := scanStrategy(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetEnabled toggles the strategy's autohunt flag.
func (r *StrategyRepository) SetEnabled(id uuid.UUID, enabled bool) error {
	res, err := r.db.Exec(`UPDATE strategies SET enabled = $1, updated_at = $2 WHERE id = $3`,
		enabled, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
