package tpsl

import (
	"testing"
	"time"

	"raptor/internal/models"
)

func TestDecideTrigger_PriorityOrder(t *testing.T) {
	e := &Engine{cfg: Config{DefaultSellBps: 10000}}
	strategy := &models.Strategy{MoonBagBps: 2000}

	pos := &models.Position{
		EntryPrice: 1.0,
		TPPrice:    0.8,
		SLPrice:    0.9,
		OpenedAt:   time.Now(),
	}

	// Both SL and TP conditions are met simultaneously; SL must win.
	trigger, bps := e.decideTrigger(pos, strategy, 0.85)
	if trigger != models.TriggerSL {
		t.Fatalf("trigger = %s, want SL", trigger)
	}
	if bps != 10000 {
		t.Fatalf("SL sell_percent_bps = %d, want 10000", bps)
	}
}

func TestDecideTrigger_TakeProfitRespectsMoonBag(t *testing.T) {
	e := &Engine{cfg: Config{DefaultSellBps: 10000}}
	strategy := &models.Strategy{MoonBagBps: 2500}

	pos := &models.Position{EntryPrice: 1.0, TPPrice: 1.2, SLPrice: 0.5, OpenedAt: time.Now()}

	trigger, bps := e.decideTrigger(pos, strategy, 1.25)
	if trigger != models.TriggerTP {
		t.Fatalf("trigger = %s, want TP", trigger)
	}
	if bps != 7500 {
		t.Fatalf("TP sell_percent_bps = %d, want 7500 (100%% - 25%% moon bag)", bps)
	}
}

func TestDecideTrigger_MaxHoldFiresPastDeadline(t *testing.T) {
	e := &Engine{cfg: Config{DefaultSellBps: 10000}}
	strategy := &models.Strategy{MaxHold: time.Minute}

	pos := &models.Position{
		EntryPrice: 1.0,
		TPPrice:    2.0, // unreachable
		SLPrice:    0.1, // unreachable
		OpenedAt:   time.Now().Add(-2 * time.Minute),
	}

	trigger, _ := e.decideTrigger(pos, strategy, 1.0)
	if trigger != models.TriggerMaxHold {
		t.Fatalf("trigger = %s, want MAXHOLD", trigger)
	}
}

func TestDecideTrigger_NoneWhenNothingFires(t *testing.T) {
	e := &Engine{cfg: Config{DefaultSellBps: 10000}}
	strategy := &models.Strategy{MaxHold: time.Hour}

	pos := &models.Position{
		EntryPrice: 1.0,
		TPPrice:    2.0,
		SLPrice:    0.1,
		OpenedAt:   time.Now(),
	}

	trigger, _ := e.decideTrigger(pos, strategy, 1.0)
	if trigger != models.TriggerNone {
		t.Fatalf("trigger = %s, want none", trigger)
	}
}

func TestTpSellBps(t *testing.T) {
	if got := tpSellBps(nil); got != 10000 {
		t.Fatalf("tpSellBps(nil) = %d, want 10000", got)
	}
	if got := tpSellBps(&models.Strategy{MoonBagBps: 3000}); got != 7000 {
		t.Fatalf("tpSellBps(moon_bag=30%%) = %d, want 7000", got)
	}
	if got := tpSellBps(&models.Strategy{MoonBagBps: 15000}); got != 0 {
		t.Fatalf("tpSellBps clamps below zero, got %d", got)
	}
}

func TestEvaluateTrailing_ArmsOnlyAfterActivation(t *testing.T) {
	strategy := &models.Strategy{
		Trailing: models.TrailingConfig{
			Enabled:             true,
			ActivationPercent:   20,
			TrailingDistanceBps: 1000, // 10%
		},
	}
	pos := &models.Position{EntryPrice: 1.0}

	// Price is up 10%, below the 20% activation threshold: must not arm.
	fired, peak, stop := evaluateTrailing(pos, strategy, 1.10)
	if fired {
		t.Fatalf("trailing fired before activation threshold")
	}
	if peak != pos.PeakPrice {
		t.Fatalf("peak should not move before activation")
	}
	_ = stop
}

func TestEvaluateTrailing_FiresOnPullbackAfterActivation(t *testing.T) {
	strategy := &models.Strategy{
		Trailing: models.TrailingConfig{
			Enabled:             true,
			ActivationPercent:   20,
			TrailingDistanceBps: 1000, // 10%
		},
	}
	pos := &models.Position{EntryPrice: 1.0}

	// Price runs up to 1.50 (50% gain), arming trailing and setting a peak.
	fired, peak, stop := evaluateTrailing(pos, strategy, 1.50)
	if fired {
		t.Fatalf("trailing should not fire on the new peak itself")
	}
	if peak != 1.50 {
		t.Fatalf("peak = %v, want 1.50", peak)
	}
	wantStop := 1.50 * 0.90
	if stop != wantStop {
		t.Fatalf("trailing_stop_price = %v, want %v", stop, wantStop)
	}

	pos.PeakPrice = peak
	pos.TrailingStopPrice = stop

	// Price pulls back to the trailing stop: must fire.
	fired, _, _ = evaluateTrailing(pos, strategy, wantStop)
	if !fired {
		t.Fatalf("trailing should fire once price falls to the trailing stop")
	}
}

func TestEvaluateTrailing_PeakNeverStepsBack(t *testing.T) {
	strategy := &models.Strategy{
		Trailing: models.TrailingConfig{
			Enabled:             true,
			ActivationPercent:   10,
			TrailingDistanceBps: 2000,
		},
	}
	pos := &models.Position{EntryPrice: 1.0, PeakPrice: 2.0, TrailingStopPrice: 1.6}

	// A lower tick than the stored peak must not lower the peak, and
	// should only fire if it has fallen to/below the existing stop.
	fired, peak, _ := evaluateTrailing(pos, strategy, 1.8)
	if peak != 2.0 {
		t.Fatalf("peak regressed: got %v, want 2.0", peak)
	}
	if fired {
		t.Fatalf("price above the stored trailing stop must not fire")
	}
}
