package tpsl

import (
	"testing"
	"time"

	"raptor/internal/models"
)

func TestExitQueue_DedupesSameKey(t *testing.T) {
	q := NewExitQueue(4)

	first := &ExitIntent{PositionID: "pos-1", Trigger: models.TriggerTP, SellPercentBps: 5000}
	second := &ExitIntent{PositionID: "pos-1", Trigger: models.TriggerTP, SellPercentBps: 5000}

	if ok := q.Enqueue(first); !ok {
		t.Fatalf("first enqueue should succeed")
	}
	if ok := q.Enqueue(second); ok {
		t.Fatalf("duplicate (position, trigger, sell_percent) should be suppressed")
	}
	if q.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", q.Len())
	}
}

func TestExitQueue_DistinctTriggersNotDeduped(t *testing.T) {
	q := NewExitQueue(4)

	q.Enqueue(&ExitIntent{PositionID: "pos-1", Trigger: models.TriggerTP, SellPercentBps: 5000})
	ok := q.Enqueue(&ExitIntent{PositionID: "pos-1", Trigger: models.TriggerSL, SellPercentBps: 10000})
	if !ok {
		t.Fatalf("different trigger on same position should not be deduped")
	}
	if q.Len() != 2 {
		t.Fatalf("queue length = %d, want 2", q.Len())
	}
}

func TestExitQueue_DequeuePriorityOrder(t *testing.T) {
	q := NewExitQueue(4)

	now := time.Unix(1_700_000_000, 0)
	maxHold := &ExitIntent{PositionID: "pos-maxhold", Trigger: models.TriggerMaxHold, EnqueuedAt: now}
	sl := &ExitIntent{PositionID: "pos-sl", Trigger: models.TriggerSL, EnqueuedAt: now.Add(time.Second)}
	tp := &ExitIntent{PositionID: "pos-tp", Trigger: models.TriggerTP, EnqueuedAt: now.Add(2 * time.Second)}
	trail := &ExitIntent{PositionID: "pos-trail", Trigger: models.TriggerTrail, EnqueuedAt: now.Add(3 * time.Second)}

	// Enqueued out of priority order; Dequeue must still return SL, TP,
	// TRAIL, MAXHOLD (spec.md §4.4 "Trigger types and priority").
	q.Enqueue(maxHold)
	q.Enqueue(trail)
	q.Enqueue(tp)
	q.Enqueue(sl)

	stop := make(chan struct{})
	wantOrder := []models.ExitTrigger{models.TriggerSL, models.TriggerTP, models.TriggerTrail, models.TriggerMaxHold}
	for _, want := range wantOrder {
		intent, ok := q.Dequeue(stop)
		if !ok {
			t.Fatalf("dequeue failed unexpectedly")
		}
		if intent.Trigger != want {
			t.Fatalf("dequeue order: got %s, want %s", intent.Trigger, want)
		}
		q.Done(intent)
	}
}

func TestExitQueue_BackpressureHoldsRatherThanDrops(t *testing.T) {
	q := NewExitQueue(1)
	stop := make(chan struct{})

	q.Enqueue(&ExitIntent{PositionID: "pos-1", Trigger: models.TriggerSL})
	first, ok := q.Dequeue(stop)
	if !ok {
		t.Fatalf("first dequeue should have succeeded")
	}

	// concurrency slot is held; a second exit must queue without being
	// dropped, and Dequeue must not hand it out until Done frees the slot.
	q.Enqueue(&ExitIntent{PositionID: "pos-2", Trigger: models.TriggerSL})
	done := make(chan struct{})
	go func() {
		intent, ok := q.Dequeue(stop)
		if ok {
			q.Done(intent)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("second dequeue returned before the first slot was released")
	case <-time.After(50 * time.Millisecond):
	}

	q.Done(first)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("second dequeue never unblocked after Done released the slot")
	}
}

func TestExitQueue_StopUnblocksDequeue(t *testing.T) {
	q := NewExitQueue(4)
	stop := make(chan struct{})
	close(stop)

	if _, ok := q.Dequeue(stop); ok {
		t.Fatalf("dequeue on a closed stop channel should return ok=false")
	}
}
