package execution

import (
	"testing"

	"raptor/internal/models"
)

func TestSellFractionFor_NonTPTriggersSellFullRequest(t *testing.T) {
	got := sellFractionFor(models.TriggerSL, 10000, 2000, 0)
	if got != 1.0 {
		t.Fatalf("SL sell fraction = %v, want 1.0", got)
	}
}

func TestSellFractionFor_TakeProfitRespectsMoonBag(t *testing.T) {
	// Requesting a full exit on TP with a 20% moon bag must cap at 80%.
	got := sellFractionFor(models.TriggerTP, 10000, 2000, 0)
	if got != 0.8 {
		t.Fatalf("TP sell fraction = %v, want 0.8", got)
	}
}

func TestSellFractionFor_TakeProfitBelowMoonBagCapIsUnaffected(t *testing.T) {
	// A TP rung requesting less than the moon-bag-capped maximum sells
	// exactly what was requested.
	got := sellFractionFor(models.TriggerTP, 5000, 2000, 0)
	if got != 0.5 {
		t.Fatalf("TP sell fraction = %v, want 0.5", got)
	}
}

func TestSellFractionFor_ZeroRequestDefaultsToFullExit(t *testing.T) {
	got := sellFractionFor(models.TriggerMaxHold, 0, 0, 0)
	if got != 1.0 {
		t.Fatalf("zero sell_percent_bps should default to full exit, got %v", got)
	}
}

func TestNotificationTypeFor(t *testing.T) {
	cases := []struct {
		trigger     models.ExitTrigger
		fullyClosed bool
		want        models.NotificationType
	}{
		{models.TriggerTP, false, models.NotificationTPHit},
		{models.TriggerTP, true, models.NotificationPositionClosed},
		{models.TriggerSL, true, models.NotificationSLHit},
		{models.TriggerEmergency, true, models.NotificationPositionClosed},
		{models.TriggerTrail, false, models.NotificationTrailingHit},
		{models.TriggerMaxHold, true, models.NotificationPositionClosed},
		{models.TriggerMaxHold, false, models.NotificationPositionClosed},
	}
	for _, c := range cases {
		got := notificationTypeFor(c.trigger, c.fullyClosed)
		if got != c.want {
			t.Fatalf("notificationTypeFor(%s, %v) = %v, want %v", c.trigger, c.fullyClosed, got, c.want)
		}
	}
}

func TestPnlPercent(t *testing.T) {
	if got := pnlPercent(0, 5); got != 0 {
		t.Fatalf("pnlPercent with zero cost basis = %v, want 0", got)
	}
	if got := pnlPercent(10, 2); got != 20 {
		t.Fatalf("pnlPercent(10, 2) = %v, want 20", got)
	}
	if got := pnlPercent(10, -5); got != -50 {
		t.Fatalf("pnlPercent(10, -5) = %v, want -50", got)
	}
}
