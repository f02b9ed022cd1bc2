package opportunity

import (
	"context"
	"errors"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/metadata"
	"raptor/internal/metrics"
	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/internal/solana"
	"raptor/internal/store"
	"raptor/pkg/idkey"
	"raptor/pkg/logging"
)

// CurveReader resolves a bonding curve's reserves, used to populate an
// opportunity's initial liquidity before scoring. Alias of
// router.CurveReader so this package doesn't need its own copy of the
// bonding-curve account contract.
type CurveReader = router.CurveReader

// Engine runs spec.md §4.2's full operation sequence: upsert, strategy
// matching, snipe-mode-budgeted metadata fetch, scoring, and BUY job
// materialization. Grounded on the teacher's bot.Engine orchestration
// shape (internal/bot/engine.go), replacing exchange-spread evaluation
// with launchpad create-event evaluation.
type Engine struct {
	store   *store.Store
	fetcher *metadata.Fetcher
	curves  CurveReader
	rules   []Rule
	log     *logging.Logger
}

// New builds an opportunity engine over st, using rules for scoring
// (callers pass DefaultRules in production). curves may be nil, in which
// case every opportunity scores with zero initial liquidity.
func New(st *store.Store, fetcher *metadata.Fetcher, curves CurveReader, rules []Rule, log *logging.Logger) *Engine {
	return &Engine{store: st, fetcher: fetcher, curves: curves, rules: rules, log: log}
}

// initialLiquidity reads curve's current virtual SOL reserves, the
// constant-product liquidity depth the curve starts with at mint (spec.md
// §8 glossary). A read failure (account not yet visible, RPC hiccup)
// yields zero rather than blocking scoring.
func (e *Engine) initialLiquidity(ctx context.Context, curve solanago.PublicKey) float64 {
	if e.curves == nil {
		return 0
	}
	state, err := e.curves.ReadCurve(ctx, curve)
	if err != nil {
		if e.log != nil {
			e.log.Warn("opportunity: read bonding curve failed", logging.Err(err))
		}
		return 0
	}
	return float64(state.VirtualSolReserves) / 1e9
}

// Handle implements monitor.Handler: it is registered against a Monitor
// and invoked once per decoded CreateEvent.
func (e *Engine) Handle(ctx context.Context, event solana.CreateEvent) error {
	return e.Process(ctx, event, models.ChainSolana)
}

// Process runs the full §4.2 sequence for one create-event.
func (e *Engine) Process(ctx context.Context, event solana.CreateEvent, chain models.Chain) error {
	// Step 1: upsert, keyed on (source, mint). Source is fixed to the
	// pump.fun-family wire format this decoder understands; a future
	// multi-launchpad decoder would carry source on CreateEvent instead.
	const source = "pump.fun"
	opp, err := e.store.Opportunities.UpsertNew(&models.Opportunity{
		Source:              source,
		TokenMint:           event.Mint.String(),
		Name:                event.Name,
		Symbol:              event.Symbol,
		Deployer:            event.Creator.String(),
		BondingCurveAddr:    event.BondingCurve.String(),
		InitialLiquiditySol: e.initialLiquidity(ctx, event.BondingCurve),
	})
	if err != nil {
		return err
	}
	metrics.RecordCreateEvent(source)

	// Step 2: enabled strategies for the chain.
	strategies, err := e.store.Strategies.ListEnabledByChain(chain)
	if err != nil {
		return err
	}
	if len(strategies) == 0 {
		return nil
	}

	// Step 3: most thorough snipe mode active among enabled strategies.
	mode := SelectSnipeMode(strategies)

	// Step 4: budgeted metadata fetch; failure/timeout yields null,
	// never blocks beyond the budget.
	var meta *metadata.Metadata
	if e.fetcher != nil {
		meta = e.fetcher.FetchWithBudget(ctx, event.URI, mode.Budget())
	}

	deployerCount, err := e.store.Opportunities.CountByDeployer(event.Creator.String(), opp.ID)
	if err != nil {
		return err
	}

	// Step 5: score.
	in := RuleInput{
		InitialLiquiditySol: opp.InitialLiquiditySol,
		HasMetadata:         meta != nil,
		NameLength:          len(event.Name),
		SymbolLength:        len(event.Symbol),
		DeployerSeenBefore:  deployerCount > 0,
	}
	score, reasons, hardStopped := Score(e.rules, in)
	if hardStopped {
		score, reasons = 0, nil
	}

	// Step 6: write back score/reasons; reject if below every strategy's
	// min_score.
	if err := e.store.Opportunities.UpdateScore(opp.ID, score, reasons); err != nil {
		return err
	}

	belowAll := true
	for _, s := range strategies {
		if s.MinScore <= score {
			belowAll = false
			break
		}
	}
	if hardStopped || belowAll {
		metrics.RecordOpportunity(score, string(models.OpportunityRejected))
		_, err := e.store.Opportunities.AdvanceStatus(opp.ID, models.OpportunityNew, models.OpportunityRejected)
		return err
	}

	// Qualify before job creation, per the opportunity status DAG
	// (NEW -> QUALIFIED -> EXECUTING).
	if _, err := e.store.Opportunities.AdvanceStatus(opp.ID, models.OpportunityNew, models.OpportunityQualified); err != nil {
		return err
	}
	if _, err := e.store.Opportunities.AdvanceStatus(opp.ID, models.OpportunityQualified, models.OpportunityExecuting); err != nil {
		return err
	}

	// Step 7: one BUY job per matching strategy.
	created := 0
	for _, s := range strategies {
		if score < s.MinScore {
			continue
		}
		if !s.AllowsSource(source) {
			continue
		}
		if opp.InitialLiquiditySol < s.MinLiquiditySol {
			continue
		}
		if s.DeniesToken(opp.TokenMint, opp.Deployer) {
			continue
		}

		job := &models.TradeJob{
			IdempotencyKey: idkey.BuyJob(string(chain), s.ID.String(), opp.TokenMint, opp.ID.String(), s.MaxPerTradeSol, s.SlippageBps),
			StrategyID:     s.ID,
			UserTelegramID: s.UserTelegramID,
			OpportunityID:  opp.ID,
			Chain:          chain,
			Action:         models.JobActionBuy,
			Priority:       100,
			Payload: models.JobPayload{
				Mint:                opp.TokenMint,
				AmountSol:           s.MaxPerTradeSol,
				SlippageBps:         s.SlippageBps,
				PriorityFeeLamports: s.PriorityFeeLamports,
			},
		}
		if err := e.store.TradeJobs.Create(job); err != nil {
			if errors.Is(err, store.ErrDuplicateJob) {
				continue
			}
			if e.log != nil {
				e.log.Warn("opportunity: job creation failed", logging.Mint(opp.TokenMint), logging.Err(err))
			}
			continue
		}
		created++
	}

	// Step 8: advance status based on whether any job was created.
	to := models.OpportunityRejected
	if created > 0 {
		to = models.OpportunityCompleted
	}
	metrics.RecordOpportunity(score, string(to))
	_, err = e.store.Opportunities.AdvanceStatus(opp.ID, models.OpportunityExecuting, to)
	return err
}
