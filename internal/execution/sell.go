package execution

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

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

// executeSell runs spec.md §4.3's SELL pipeline for job. The job always
// names the position it exits and the trigger that produced it.
func (e *Engine) executeSell(ctx context.Context, job *models.TradeJob) error {
	pos, err := e.store.Positions.GetByID(job.Payload.PositionID)
	if err != nil {
		return fmt.Errorf("execution: load position: %w", err)
	}

	ok, err := e.store.Positions.MarkExecuting(pos.ID)
	if err != nil {
		return fmt.Errorf("execution: mark position executing: %w", err)
	}
	if !ok {
		return nil // another worker already owns this exit
	}

	strategy, err := e.store.Strategies.GetByID(job.StrategyID)
	if err != nil {
		return e.failSell(pos.ID, err)
	}
	wallet, err := e.store.Wallets.GetActiveByUserAndChain(job.UserTelegramID, job.Chain)
	if err != nil {
		return e.failSell(pos.ID, err)
	}

	secret, err := e.openWallet(job.UserTelegramID, wallet)
	if err != nil {
		return e.failSell(pos.ID, err)
	}
	defer crypto.Zeroize(secret)

	signer, err := newSigningWallet(secret)
	if err != nil {
		return e.failSell(pos.ID, err)
	}

	mint, err := solana.ParseMint(pos.TokenMint)
	if err != nil {
		return e.failSell(pos.ID, err)
	}

	sellFraction := sellFractionFor(job.Payload.Trigger, job.Payload.SellPercentBps, strategy.MoonBagBps, pos.ExitLevelsHit)
	sizeTokens := pos.SizeTokens * sellFraction
	fullyClosed := sellFraction >= 1.0

	var bondingCurve solanago.PublicKey
	if pos.LifecycleState == models.LifecyclePreGraduation && pos.BondingCurve != "" {
		bondingCurve, err = solana.ParseMint(pos.BondingCurve)
		if err != nil {
			return e.failSell(pos.ID, err)
		}
	}

	intent := router.Intent{
		Mint:         mint,
		BondingCurve: bondingCurve,
		Side:         router.SideSell,
		SizeTokens:   sizeTokens,
		SlippageBps:  strategy.SlippageBps,
	}

	r, err := router.Select(intent, pos.LifecycleState == models.LifecyclePostGraduation, e.graduated, e.curveRouter(), e.ammRouter())
	if err != nil {
		return e.failSell(pos.ID, err)
	}

	quote, err := r.Quote(ctx, intent)
	if err != nil {
		return e.failSell(pos.ID, classifyRouterErr(err))
	}

	var signed *router.SignedTx
	err = retry.Do(ctx, func() error {
		signed, err = r.Prepare(ctx, quote, signer)
		return err
	}, retry.ClassifiedPolicy(string(errkind.BlockhashExpired)))
	if err != nil {
		return e.failSell(pos.ID, classifyRouterErr(err))
	}

	var txSig string
	err = retry.Do(ctx, func() error {
		var submitErr error
		txSig, submitErr = r.Submit(ctx, signed)
		return submitErr
	}, retry.ClassifiedPolicy(string(errkind.RPCTimeout)))
	if err != nil {
		return e.failSell(pos.ID, classifyRouterErr(err))
	}

	lamportsOut := quote.LamportsOut
	costBasis := pos.EntryCostSol * sellFraction
	solReceived := float64(lamportsOut) / 1e9
	realizedPnl := solReceived - costBasis

	if err := e.store.Positions.MarkTriggerCompleted(pos.ID, realizedPnl, fullyClosed); err != nil {
		return fmt.Errorf("execution: mark position completed: %w", err)
	}

	notif := &models.Notification{
		UserTelegramID: job.UserTelegramID,
		Type:           notificationTypeFor(job.Payload.Trigger, fullyClosed),
		Payload: map[string]interface{}{
			"positionId":  pos.ID.String(),
			"tokenSymbol": pos.TokenSymbol,
			"trigger":     string(job.Payload.Trigger),
			"pnlPercent":  pnlPercent(costBasis, realizedPnl),
			"solReceived": solReceived,
			"txHash":      txSig,
		},
	}
	if err := e.store.Notifications.Create(notif); err != nil && e.log != nil {
		e.log.Warn("execution: sell notification enqueue failed", logging.Err(err))
	}
	metrics.RecordTrade("sell", "success", realizedPnl)
	e.recordAudit(audit.Entry{
		UserTelegramID: job.UserTelegramID,
		Chain:          job.Chain,
		TokenMint:      pos.TokenMint,
		Action:         models.JobActionSell,
		Trigger:        job.Payload.Trigger,
		AmountSol:      solReceived,
		Price:          quote.Price,
		TxSignature:    txSig,
		Success:        true,
	})
	return nil
}

// failSell records the SELL pipeline's terminal failure state (spec.md
// §4.3 step 3: "On failure, set trigger_state = FAILED; FAILED is
// terminal until manually escalated via emergency-sell") and returns err
// unchanged so the caller's job-failure bookkeeping still runs.
func (e *Engine) failSell(positionID uuid.UUID, err error) error {
	if markErr := e.store.Positions.MarkTriggerFailed(positionID); markErr != nil && e.log != nil {
		e.log.Warn("execution: mark trigger failed errored", logging.Err(markErr))
	}
	return err
}

// sellFractionFor derives the fraction of the position's size to sell for
// this exit, applying the moon-bag reservation on take-profit exits only
// (spec.md §4.4: "TP legs respect the strategy's moon bag; SL, TRAIL, and
// MAXHOLD always sell down to the moon bag or fully close").
func sellFractionFor(trigger models.ExitTrigger, sellPercentBps, moonBagBps, exitLevelsHit int) float64 {
	requested := float64(sellPercentBps) / 10000
	if requested <= 0 {
		requested = 1.0
	}
	if trigger != models.TriggerTP {
		return requested
	}
	moonBag := float64(moonBagBps) / 10000
	maxSellable := 1.0 - moonBag
	if requested > maxSellable {
		return maxSellable
	}
	return requested
}

func notificationTypeFor(trigger models.ExitTrigger, fullyClosed bool) models.NotificationType {
	switch trigger {
	case models.TriggerTP:
		if fullyClosed {
			return models.NotificationPositionClosed
		}
		return models.NotificationTPHit
	case models.TriggerSL:
		return models.NotificationSLHit
	case models.TriggerTrail:
		return models.NotificationTrailingHit
	case models.TriggerEmergency, models.TriggerMaxHold:
		return models.NotificationPositionClosed
	default:
		if fullyClosed {
			return models.NotificationPositionClosed
		}
		return models.NotificationTPHit
	}
}

func pnlPercent(costBasis, realizedPnl float64) float64 {
	if costBasis == 0 {
		return 0
	}
	return realizedPnl / costBasis * 100
}

func (e *Engine) curveRouter() *router.BondingCurveRouter {
	if e.curves == nil {
		return nil
	}
	return router.NewBondingCurveRouter(e.curves, e.builder, e.submitter, e.cfg.PriceImpactCapBp, e.log)
}

func (e *Engine) ammRouter() *router.AmmAggregatorRouter {
	if e.quoter == nil {
		return nil
	}
	return router.NewAmmAggregatorRouter(e.quoter, e.builder, e.submitter, e.cfg.PriceImpactCapBp, e.log)
}
