// Package metadata fetches the off-chain token metadata JSON referenced by
// a CreateEvent's URI, within the opportunity engine's per-mode budget
// (spec.md §4.2 step 4). Grounded on the teacher's
// internal/exchange/httpclient.go connection-pooled *http.Client shape,
// generalized from exchange REST calls to one content-addressed GET.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// json is this package's hot-path metadata decoder (spec.md §4.2 step 4 /
// SPEC_FULL.md's domain-stack table: launch-event metadata fetch/decode
// uses the same faster-than-stdlib codec internal/store/strategy.go and
// internal/monitor/decode.go already wire in).
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata is the subset of the pump.fun-family metadata JSON schema the
// scoring rule set consumes. Unknown fields are ignored.
type Metadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
	Website     string `json:"website"`
}

// Fetcher fetches token metadata over HTTP with connection reuse.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher with a pooled transport, mirroring the
// teacher's GetGlobalHTTPClient default connection-pool sizing.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch retrieves and decodes the metadata JSON at uri, bounded by timeout.
// Per spec.md §4.2 step 4, any failure or timeout is reported as an error
// and the caller treats it as null metadata — it must never block the
// opportunity engine beyond the budget.
func (f *Fetcher) Fetch(ctx context.Context, uri string, timeout time.Duration) (*Metadata, error) {
	if uri == "" {
		return nil, fmt.Errorf("metadata: empty uri")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata: unexpected status %d", resp.StatusCode)
	}

	var m Metadata
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchWithBudget fetches metadata honoring a snipe-mode budget. A budget
// of zero skips the fetch entirely (spec.md §4.2 step 4: "If budget > 0
// and uri is non-empty").
func (f *Fetcher) FetchWithBudget(ctx context.Context, uri string, budget time.Duration) *Metadata {
	if budget <= 0 || uri == "" {
		return nil
	}
	m, err := f.Fetch(ctx, uri, budget)
	if err != nil {
		return nil
	}
	return m
}
