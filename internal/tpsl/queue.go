package tpsl

import (
	"container/heap"
	"sync"
	"time"

	"raptor/internal/models"
	"raptor/pkg/idkey"
)

// ExitIntent is one queued sell, produced once trigger_exit_atomically
// has already won the race for its position (spec.md §4.4 "Exit
// queue").
type ExitIntent struct {
	PositionID     string
	UserTelegramID int64
	StrategyID     string
	Chain          models.Chain
	Mint           string
	Trigger        models.ExitTrigger
	TriggerPrice   float64
	SellPercentBps int
	EnqueuedAt     time.Time

	priority int
	index    int // heap bookkeeping
}

// exitHeap orders by (trigger_priority, enqueued_at), lowest first —
// SL beats TP beats TRAIL beats MAXHOLD, ties broken FIFO.
type exitHeap []*ExitIntent

func (h exitHeap) Len() int { return len(h) }
func (h exitHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].EnqueuedAt.Before(h[j].EnqueuedAt)
}
func (h exitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *exitHeap) Push(x interface{}) {
	it := x.(*ExitIntent)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *exitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// ExitQueue is the in-process, priority-ordered, deduplicated queue
// between the TP/SL engine (producer) and its drain loop (consumer),
// per spec.md §4.4. Deduplicated by H(position_id, trigger,
// sell_percent); bounded concurrency via a semaphore, backpressure
// holds rather than drops.
type ExitQueue struct {
	mu   sync.Mutex
	h    exitHeap
	seen map[string]struct{}

	wake chan struct{} // non-blocking signal, buffered 1
	sem  chan struct{} // max_concurrent_exits
}

// NewExitQueue builds a queue bounding concurrent in-flight exits to
// maxConcurrentExits.
func NewExitQueue(maxConcurrentExits int) *ExitQueue {
	if maxConcurrentExits <= 0 {
		maxConcurrentExits = 1
	}
	return &ExitQueue{
		h:    exitHeap{},
		seen: make(map[string]struct{}),
		wake: make(chan struct{}, 1),
		sem:  make(chan struct{}, maxConcurrentExits),
	}
}

func (q *ExitQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Enqueue adds intent unless an identical (position, trigger,
// sell_percent) key is already queued or in flight. Returns false when
// deduplicated.
func (q *ExitQueue) Enqueue(intent *ExitIntent) bool {
	key := idkey.Exit(intent.PositionID, string(intent.Trigger), intent.SellPercentBps)

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, dup := q.seen[key]; dup {
		return false
	}
	q.seen[key] = struct{}{}
	intent.priority = models.TriggerPriority(intent.Trigger)
	if intent.EnqueuedAt.IsZero() {
		intent.EnqueuedAt = time.Now()
	}
	heap.Push(&q.h, intent)
	q.signal()
	return true
}

// Dequeue blocks until an exit can run (both queued and a free
// concurrency slot), claims a slot, and returns it. Done must be called
// once the caller finishes processing the intent to release the slot
// and its dedup key.
func (q *ExitQueue) Dequeue(stop <-chan struct{}) (*ExitIntent, bool) {
	for {
		q.mu.Lock()
		if q.h.Len() == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-stop:
				return nil, false
			}
		}
		intent := heap.Pop(&q.h).(*ExitIntent)
		q.mu.Unlock()

		select {
		case q.sem <- struct{}{}:
			return intent, true
		case <-stop:
			q.release(intent)
			return nil, false
		}
	}
}

// Done releases the concurrency slot and dedup key taken by intent,
// letting a fresh exit for the same position queue again later (e.g. a
// residual moon-bag position returning to MONITORING).
func (q *ExitQueue) Done(intent *ExitIntent) {
	<-q.sem
	q.release(intent)
}

func (q *ExitQueue) release(intent *ExitIntent) {
	key := idkey.Exit(intent.PositionID, string(intent.Trigger), intent.SellPercentBps)
	q.mu.Lock()
	delete(q.seen, key)
	q.mu.Unlock()
}

// Len reports the number of intents waiting (not yet dequeued).
func (q *ExitQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}
