package tpsl

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"raptor/internal/metrics"
	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/internal/store"
	"raptor/pkg/idkey"
	"raptor/pkg/logging"
)

// KnownGraduated is an alias of router.KnownGraduated so this package
// doesn't need its own copy of the graduation-tracking contract.
type KnownGraduated = router.KnownGraduated

// Config tunes the evaluation loop.
type Config struct {
	PollInterval       time.Duration // spec.md §4.4: aggregator polled every ~3s
	MaxConcurrentExits int
	DefaultSellBps     int // 10000 = 100%, used when a job doesn't name a rung
}

// DefaultConfig matches spec.md §4.4's "~3 s" aggregator poll cadence.
func DefaultConfig() Config {
	return Config{
		PollInterval:       3 * time.Second,
		MaxConcurrentExits: 8,
		DefaultSellBps:     10000,
	}
}

// Engine evaluates exit triggers for every MONITORING position on a
// ticker and drains its own ExitQueue into TradeJobs, never awaiting a
// sell inline (spec.md §4.4 "Non-blocking contract").
type Engine struct {
	store         *store.Store
	prices        *PriceReader
	graduated     KnownGraduated
	queue         *ExitQueue
	cfg           Config
	log           *logging.Logger
	strategyCache map[uuid.UUID]*models.Strategy
}

// New builds a TP/SL engine. graduated may be nil, in which case
// PRE_GRADUATION positions are never promoted to POST_GRADUATION here (the
// executor's own graduation tracker still applies to fresh router
// selections on the SELL path).
func New(st *store.Store, prices *PriceReader, graduated KnownGraduated, cfg Config, log *logging.Logger) *Engine {
	return &Engine{
		store:         st,
		prices:        prices,
		graduated:     graduated,
		queue:         NewExitQueue(cfg.MaxConcurrentExits),
		cfg:           cfg,
		log:           log,
		strategyCache: make(map[uuid.UUID]*models.Strategy),
	}
}

// Start runs the evaluation loop and the queue-drain loop until ctx is
// cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.evalLoop(ctx)
	go e.drainLoop(ctx)
}

func (e *Engine) evalLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.evaluateAll(ctx)
		}
	}
}

// evaluateAll is synchronous and non-blocking on any sell: it only ever
// reads prices, updates peak/trailing bookkeeping, and enqueues — it
// never submits or awaits a trade.
func (e *Engine) evaluateAll(ctx context.Context) {
	positions, err := e.store.Positions.ListMonitoring()
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: list monitoring failed", logging.Err(err))
		}
		return
	}
	for _, pos := range positions {
		e.evaluateOne(ctx, pos)
	}
}

func (e *Engine) evaluateOne(ctx context.Context, pos *models.Position) {
	if !pos.IsEligibleForEvaluation() {
		return
	}
	e.checkGraduation(pos)
	price, err := e.prices.Price(ctx, pos)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: price read failed", logging.PositionID(pos.ID.String()), logging.Err(err))
		}
		return
	}

	strategy := e.strategyFor(pos.StrategyID)

	trigger, sellBps := e.decideTrigger(pos, strategy, price)
	if trigger == models.TriggerNone {
		return
	}

	won, err := e.store.Positions.TriggerExitAtomically(pos.ID, trigger, price)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: trigger_exit_atomically errored", logging.PositionID(pos.ID.String()), logging.Err(err))
		}
		return
	}
	if !won {
		return // another evaluation tick already claimed this position's exit
	}

	intent := &ExitIntent{
		PositionID:     pos.ID.String(),
		UserTelegramID: pos.UserTelegramID,
		StrategyID:     pos.StrategyID.String(),
		Chain:          pos.Chain,
		Mint:           pos.TokenMint,
		Trigger:        trigger,
		TriggerPrice:   price,
		SellPercentBps: sellBps,
	}
	if !e.queue.Enqueue(intent) {
		if e.log != nil {
			e.log.Warn("tpsl: duplicate exit suppressed", logging.PositionID(pos.ID.String()), logging.Trigger(string(trigger)))
		}
		return
	}
	metrics.RecordExitTrigger(string(trigger))
	metrics.UpdateExitQueueDepth(e.queue.Len())
}

// checkGraduation flips pos to POST_GRADUATION once its bonding curve
// completes, so the very same tick's price read uses the aggregator spot
// price instead of curve state that `router.BondingCurveRouter.Quote`
// would refuse once complete (spec.md §8 scenario 3). pos is updated
// in-place on success so the caller's price read sees the new state.
func (e *Engine) checkGraduation(pos *models.Position) {
	if e.graduated == nil || pos.LifecycleState != models.LifecyclePreGraduation {
		return
	}
	if !e.graduated.IsGraduated(pos.TokenMint) {
		return
	}
	won, err := e.store.Positions.GraduatePositionAtomically(pos.ID)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: graduate_position_atomically errored", logging.PositionID(pos.ID.String()), logging.Err(err))
		}
		return
	}
	if won {
		pos.LifecycleState = models.LifecyclePostGraduation
	}
}

// decideTrigger evaluates SL > TP > TRAIL > MAXHOLD in that priority
// order, the first one to fire wins and suppresses the rest for this
// tick (spec.md §4.4 "Trigger types and priority").
func (e *Engine) decideTrigger(pos *models.Position, strategy *models.Strategy, price float64) (models.ExitTrigger, int) {
	if pos.SLPrice > 0 && price <= pos.SLPrice {
		return models.TriggerSL, e.cfg.DefaultSellBps
	}
	if strategy != nil && strategy.Laddered() {
		if rung, ok := strategy.NextRung(pos.ExitLevelsHit); ok {
			target := pos.EntryPrice * (1 + float64(rung.TargetBps)/10000)
			if price >= target {
				return models.TriggerTP, rungSellBps(rung, strategy)
			}
		}
	} else if pos.TPPrice > 0 && price >= pos.TPPrice {
		return models.TriggerTP, tpSellBps(strategy)
	}
	if strategy != nil && strategy.Trailing.Enabled {
		if fired, newPeak, newStop := evaluateTrailing(pos, strategy, price); fired {
			e.updatePeak(pos.ID, newPeak, newStop)
			return models.TriggerTrail, e.cfg.DefaultSellBps
		} else if newPeak > pos.PeakPrice {
			e.updatePeak(pos.ID, newPeak, newStop)
		}
	}
	if strategy != nil && strategy.MaxHold > 0 && time.Since(pos.OpenedAt) >= strategy.MaxHold {
		return models.TriggerMaxHold, e.cfg.DefaultSellBps
	}
	return models.TriggerNone, 0
}

// tpSellBps returns 100% minus the strategy's moon bag reservation
// (spec.md §4.4 "Moon bag": "on TP, reduce sell_percent to 100 −
// moon_bag%").
func tpSellBps(strategy *models.Strategy) int {
	if strategy == nil {
		return 10000
	}
	bps := 10000 - strategy.MoonBagBps
	if bps < 0 {
		bps = 0
	}
	return bps
}

// rungSellBps applies the strategy's moon bag cap to a DCA rung the same
// way tpSellBps caps a flat TP: the moon bag reservation always wins over
// whatever the rung itself asks for.
func rungSellBps(rung models.DCARung, strategy *models.Strategy) int {
	bps := rung.SellPercentBps
	cap := 10000 - strategy.MoonBagBps
	if bps > cap {
		bps = cap
	}
	if bps < 0 {
		bps = 0
	}
	return bps
}

// evaluateTrailing implements the TRAIL rule: once price has exceeded
// the activation threshold above entry, peak_price tracks monotonically
// and trailing_stop_price = peak_price * (1 - trailing_distance%); it
// fires when price falls to or below that stop.
func evaluateTrailing(pos *models.Position, strategy *models.Strategy, price float64) (fired bool, newPeak, newStop float64) {
	activation := pos.EntryPrice * (1 + strategy.Trailing.ActivationPercent/100)
	if pos.PeakPrice < activation && price < activation {
		return false, pos.PeakPrice, pos.TrailingStopPrice
	}
	newPeak = pos.PeakPrice
	if price > newPeak {
		newPeak = price
	}
	newStop = newPeak * (1 - float64(strategy.Trailing.TrailingDistanceBps)/10000)
	if pos.TrailingStopPrice > 0 && price <= pos.TrailingStopPrice {
		return true, newPeak, newStop
	}
	if price <= newStop && newPeak > activation {
		return true, newPeak, newStop
	}
	return false, newPeak, newStop
}

func (e *Engine) updatePeak(id uuid.UUID, peak, trailingStop float64) {
	if err := e.store.Positions.UpdatePeak(id, peak, trailingStop); err != nil && e.log != nil {
		e.log.Warn("tpsl: update peak failed", logging.PositionID(id.String()), logging.Err(err))
	}
}

func (e *Engine) strategyFor(id uuid.UUID) *models.Strategy {
	if s, ok := e.strategyCache[id]; ok {
		return s
	}
	s, err := e.store.Strategies.GetByID(id)
	if err != nil {
		return nil
	}
	e.strategyCache[id] = s
	return s
}

// drainLoop consumes the exit queue and materializes each intent as a
// durable TradeJob(SELL), handing execution off to the Trade Execution
// Engine's own worker pool — the queue never submits a trade itself.
func (e *Engine) drainLoop(ctx context.Context) {
	stop := ctx.Done()
	for {
		intent, ok := e.queue.Dequeue(stop)
		if !ok {
			return
		}
		e.materialize(intent)
		e.queue.Done(intent)
	}
}

func (e *Engine) materialize(intent *ExitIntent) {
	strategyID, err := uuid.Parse(intent.StrategyID)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: bad strategy id in exit intent", logging.Err(err))
		}
		return
	}
	positionID, err := uuid.Parse(intent.PositionID)
	if err != nil {
		if e.log != nil {
			e.log.Warn("tpsl: bad position id in exit intent", logging.Err(err))
		}
		return
	}

	job := &models.TradeJob{
		IdempotencyKey: idkey.Exit(intent.PositionID, string(intent.Trigger), intent.SellPercentBps),
		StrategyID:     strategyID,
		UserTelegramID: intent.UserTelegramID,
		Chain:          intent.Chain,
		Action:         models.JobActionSell,
		Priority:       models.TriggerPriority(intent.Trigger),
		Payload: models.JobPayload{
			Mint:           intent.Mint,
			Trigger:        intent.Trigger,
			TriggerPrice:   intent.TriggerPrice,
			SellPercentBps: intent.SellPercentBps,
			PositionID:     positionID,
		},
	}
	if err := e.store.TradeJobs.Create(job); err != nil && !errors.Is(err, store.ErrDuplicateJob) {
		if e.log != nil {
			e.log.Warn("tpsl: create sell job failed", logging.PositionID(intent.PositionID), logging.Err(err))
		}
	}
}
