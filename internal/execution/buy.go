package execution

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/audit"
	"raptor/internal/metrics"
	"raptor/internal/models"
	"raptor/internal/router"
	"raptor/internal/solana"
	"raptor/pkg/crypto"
	"raptor/pkg/errkind"
	"raptor/pkg/logging"
	"raptor/pkg/retry"
)

// executeBuy runs spec.md §4.3's BUY pipeline for job end to end.
func (e *Engine) executeBuy(ctx context.Context, job *models.TradeJob) error {
	strategy, err := e.store.Strategies.GetByID(job.StrategyID)
	if err != nil {
		return fmt.Errorf("execution: load strategy: %w", err)
	}
	wallet, err := e.store.Wallets.GetActiveByUserAndChain(job.UserTelegramID, job.Chain)
	if err != nil {
		return fmt.Errorf("execution: load wallet: %w", err)
	}
	opp, err := e.store.Opportunities.GetByID(job.OpportunityID)
	if err != nil {
		return fmt.Errorf("execution: load opportunity: %w", err)
	}

	secret, err := e.openWallet(job.UserTelegramID, wallet)
	if err != nil {
		return fmt.Errorf("execution: decrypt wallet: %w", err)
	}
	defer crypto.Zeroize(secret)

	signer, err := newSigningWallet(secret)
	if err != nil {
		return err
	}

	mint, err := solana.ParseMint(job.Payload.Mint)
	if err != nil {
		return errkind.New(errkind.ParseFailed, err, map[string]interface{}{"mint": job.Payload.Mint})
	}

	r, intent, err := e.selectRouterForBuy(mint, opp, job)
	if err != nil {
		return err
	}

	if err := e.checkBalance(ctx, signer.PublicKey(), job.Payload.AmountSol); err != nil {
		return err
	}

	quote, err := r.Quote(ctx, intent)
	if err != nil {
		return classifyRouterErr(err)
	}

	var signed *router.SignedTx
	policy := retry.ClassifiedPolicy(string(errkind.BlockhashExpired))
	err = retry.Do(ctx, func() error {
		signed, err = r.Prepare(ctx, quote, signer)
		return err
	}, policy)
	if err != nil {
		return classifyRouterErr(err)
	}

	var txSig string
	err = retry.Do(ctx, func() error {
		var submitErr error
		txSig, submitErr = r.Submit(ctx, signed)
		return submitErr
	}, retry.ClassifiedPolicy(string(errkind.RPCTimeout)))
	if err != nil {
		return classifyRouterErr(err)
	}

	entryPrice := quote.Price
	tpPrice := entryPrice * (1 + float64(strategy.TakeProfitBps)/10000)
	slPrice := entryPrice * (1 - float64(strategy.StopLossBps)/10000)

	lifecycle := models.LifecyclePostGraduation
	if !intent.BondingCurve.IsZero() {
		lifecycle = models.LifecyclePreGraduation
	}

	position := &models.Position{
		UserTelegramID: job.UserTelegramID,
		StrategyID:     job.StrategyID,
		Chain:          job.Chain,
		TokenMint:      job.Payload.Mint,
		TokenSymbol:    opp.Symbol,
		BondingCurve:   intent.BondingCurve.String(),
		EntryTxSig:     txSig,
		EntryPrice:     entryPrice,
		EntryCostSol:   job.Payload.AmountSol,
		SizeTokens:     quote.TokensOut,
		TokenDecimals:  6, // pump.fun-family tokens are minted with 6 decimals
		LifecycleState: lifecycle,
		TPPrice:        tpPrice,
		SLPrice:        slPrice,
	}
	if err := e.store.Positions.Create(position); err != nil {
		return fmt.Errorf("execution: record position: %w", err)
	}

	notif := &models.Notification{
		UserTelegramID: job.UserTelegramID,
		Type:           models.NotificationBuyConfirmed,
		Payload: map[string]interface{}{
			"mint":       job.Payload.Mint,
			"symbol":     opp.Symbol,
			"amountSol":  job.Payload.AmountSol,
			"tokensOut":  quote.TokensOut,
			"txHash":     txSig,
			"entryPrice": entryPrice,
			"positionId": position.ID.String(),
		},
	}
	if err := e.store.Notifications.Create(notif); err != nil && e.log != nil {
		e.log.Warn("execution: buy_confirmed notification enqueue failed", logging.Err(err))
	}
	metrics.RecordTrade("buy", "success", 0)
	e.recordAudit(audit.Entry{
		UserTelegramID: job.UserTelegramID,
		Chain:          job.Chain,
		TokenMint:      job.Payload.Mint,
		Action:         models.JobActionBuy,
		AmountSol:      job.Payload.AmountSol,
		Price:          entryPrice,
		TxSignature:    txSig,
		Success:        true,
	})
	return nil
}

// selectRouterForBuy resolves the venue per spec.md §4.3 step 2 and
// builds the buy Intent.
func (e *Engine) selectRouterForBuy(mint solanago.PublicKey, opp *models.Opportunity, job *models.TradeJob) (router.Router, router.Intent, error) {
	intent := router.Intent{
		Mint:        mint,
		Side:        router.SideBuy,
		AmountSol:   job.Payload.AmountSol,
		SlippageBps: job.Payload.SlippageBps,
	}

	if opp.BondingCurveAddr != "" {
		if curve, err := solana.ParseMint(opp.BondingCurveAddr); err == nil {
			intent.BondingCurve = curve
		}
	}

	chosen, err := router.Select(intent, false, e.graduated, e.curveRouter(), e.ammRouter())
	if err != nil {
		return nil, router.Intent{}, err
	}
	return chosen, intent, nil
}

// checkBalance validates the wallet holds enough SOL to cover the trade
// plus a rent/fee buffer (spec.md §4.3 step 3). Skipped (not failed) when
// no balance reader is configured.
func (e *Engine) checkBalance(ctx context.Context, pubkey solanago.PublicKey, amountSol float64) error {
	if e.balances == nil {
		return nil
	}
	needed := amountSol + e.cfg.RentBufferSol
	have, err := e.balances.SolBalance(ctx, pubkey)
	if err != nil {
		return fmt.Errorf("execution: read wallet balance: %w", err)
	}
	if have < needed {
		return errkind.New(errkind.InsufficientFunds,
			fmt.Errorf("need %.4f SOL, have %.4f SOL", needed, have),
			map[string]interface{}{"needed": needed, "have": have})
	}
	return nil
}

// classifyRouterErr maps an opaque router error into spec.md §7's kinds
// when it doesn't already carry one.
func classifyRouterErr(err error) error {
	if errkind.KindOf(err) != "" {
		return err
	}
	var impactErr *router.PriceImpactError
	if asPriceImpact(err, &impactErr) {
		return errkind.New(errkind.SlippageExceeded, err, nil)
	}
	return errkind.New(errkind.RPCTimeout, err, nil)
}

func asPriceImpact(err error, target **router.PriceImpactError) bool {
	e, ok := err.(*router.PriceImpactError)
	if !ok {
		return false
	}
	*target = e
	return true
}
