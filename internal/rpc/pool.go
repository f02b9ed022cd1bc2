// Package rpc manages the set of Solana RPC endpoints the executor and
// monitor broadcast transactions and fetch state through. Endpoint health
// tracking is grounded on the teacher's internal/exchange/ws_reconnect.go
// WSReconnectManager: the same atomic-state-plus-mutex-protected-fields
// shape, generalized from one WebSocket connection's up/down state to many
// HTTP endpoints' healthy/demoted state (spec.md §5: "endpoint health is
// tracked locally and demoted on timeouts or resets").
package rpc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"raptor/pkg/logging"
)

// EndpointState mirrors the teacher's WSConnectionState enum, generalized
// to an HTTP endpoint's reachability.
type EndpointState int32

const (
	EndpointHealthy EndpointState = iota
	EndpointDemoted
)

func (s EndpointState) String() string {
	if s == EndpointHealthy {
		return "healthy"
	}
	return "demoted"
}

// endpoint tracks one RPC URL's client and health state.
type endpoint struct {
	url    string
	client *rpc.Client

	state        int32        // atomic EndpointState
	failureCount int32        // atomic
	demotedAt    atomic.Value // time.Time
}

func newEndpoint(url string) *endpoint {
	return &endpoint{url: url, client: rpc.New(url)}
}

func (e *endpoint) State() EndpointState {
	return EndpointState(atomic.LoadInt32(&e.state))
}

func (e *endpoint) demote() {
	atomic.StoreInt32(&e.state, int32(EndpointDemoted))
	e.demotedAt.Store(time.Now())
}

func (e *endpoint) recover() {
	atomic.StoreInt32(&e.state, int32(EndpointHealthy))
	atomic.StoreInt32(&e.failureCount, 0)
}

// DemoteCooldown is how long a demoted endpoint is skipped before being
// retried, mirroring the teacher's reconnect cooldown shape.
const DemoteCooldown = 30 * time.Second

func (e *endpoint) eligible() bool {
	if e.State() == EndpointHealthy {
		return true
	}
	demotedAt, _ := e.demotedAt.Load().(time.Time)
	return time.Since(demotedAt) > DemoteCooldown
}

// Pool shards a primary RPC endpoint plus numbered fallbacks
// (SOLANA_RPC_URL + fallbacks, spec.md §5) and broadcasts in parallel with
// first-wins semantics.
type Pool struct {
	mu        sync.RWMutex
	endpoints []*endpoint
	log       *logging.Logger
}

// ErrNoHealthyEndpoint is returned when every endpoint in the pool is
// currently demoted and still within its cooldown window.
var ErrNoHealthyEndpoint = errors.New("rpc: no healthy endpoint available")

// NewPool builds a pool from a primary URL plus ordered fallbacks.
func NewPool(primary string, fallbacks []string, log *logging.Logger) *Pool {
	endpoints := make([]*endpoint, 0, 1+len(fallbacks))
	endpoints = append(endpoints, newEndpoint(primary))
	for _, url := range fallbacks {
		endpoints = append(endpoints, newEndpoint(url))
	}
	return &Pool{endpoints: endpoints, log: log}
}

// Best returns the first eligible (healthy, or demoted past cooldown)
// endpoint's RPC client in priority order.
func (p *Pool) Best() (*rpc.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ep := range p.endpoints {
		if ep.eligible() {
			return ep.client, nil
		}
	}
	return nil, ErrNoHealthyEndpoint
}

// BestWithURL is Best plus the endpoint's URL, so a caller can report
// success/failure back against the same endpoint it queried.
func (p *Pool) BestWithURL() (string, *rpc.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ep := range p.endpoints {
		if ep.eligible() {
			return ep.url, ep.client, nil
		}
	}
	return "", nil, ErrNoHealthyEndpoint
}

// ReportFailure demotes the endpoint owning client after repeated
// failures, mirroring handleDisconnect's threshold-free "one bad round
// trip marks reconnecting" posture from ws_reconnect.go, generalized to a
// small failure count so one-off hiccups don't flap an endpoint.
const demoteAfterFailures = 3

// ReportFailure records a failed call against url and demotes it once it
// crosses demoteAfterFailures consecutive failures.
func (p *Pool) ReportFailure(url string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ep := range p.endpoints {
		if ep.url != url {
			continue
		}
		n := atomic.AddInt32(&ep.failureCount, 1)
		if n >= demoteAfterFailures {
			ep.demote()
			if p.log != nil {
				p.log.Warn("rpc endpoint demoted", logging.String("url", url), logging.Int("failures", int(n)))
			}
		}
		return
	}
}

// ReportSuccess clears an endpoint's failure state and restores it to
// healthy.
func (p *Pool) ReportSuccess(url string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ep := range p.endpoints {
		if ep.url == url {
			ep.recover()
			return
		}
	}
}

// URLs returns every endpoint URL in priority order.
func (p *Pool) URLs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.endpoints))
	for i, ep := range p.endpoints {
		out[i] = ep.url
	}
	return out
}

// Broadcast submits to every endpoint in parallel and returns the first
// successful signature, per spec.md §5's "broadcast in parallel with
// first-wins semantics".
func (p *Pool) Broadcast(ctx context.Context, send func(ctx context.Context, client *rpc.Client) (string, error)) (string, error) {
	p.mu.RLock()
	endpoints := make([]*endpoint, len(p.endpoints))
	copy(endpoints, p.endpoints)
	p.mu.RUnlock()

	type result struct {
		sig string
		err error
	}
	results := make(chan result, len(endpoints))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, ep := range endpoints {
		ep := ep
		go func() {
			sig, err := send(ctx, ep.client)
			if err != nil {
				p.ReportFailure(ep.url)
			} else {
				p.ReportSuccess(ep.url)
			}
			results <- result{sig: sig, err: err}
		}()
	}

	var lastErr error
	for range endpoints {
		r := <-results
		if r.err == nil {
			return r.sig, nil
		}
		lastErr = r.err
	}
	if lastErr == nil {
		lastErr = ErrNoHealthyEndpoint
	}
	return "", lastErr
}
