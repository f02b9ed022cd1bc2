// Package jupiter implements router.PriceQuoter and tpsl.SpotPriceSource
// against Jupiter's public aggregator quote API for post-graduation
// swaps (spec.md §4.3 step 2: "AMM aggregator router"). Grounded on the
// teacher's internal/exchange/httpclient.go pooled-transport shape,
// already adapted once in internal/metadata/fetcher.go for a simpler
// single-host GET — this package follows that same weight-matched
// adaptation rather than the teacher's full dial/TLS tuning, since it
// too makes occasional bounded GETs to one host.
package jupiter

import (
	"net/http"
	"time"
)

// WrappedSolMint is Jupiter's canonical wrapped-SOL mint, used as the
// input/output mint for SOL legs of a quote.
const WrappedSolMint = "So11111111111111111111111111111111111111112"

// defaultBaseURL is Jupiter's public quote API.
const defaultBaseURL = "https://quote-api.jup.ag/v6"

// Client fetches swap quotes from Jupiter's aggregator API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client with a pooled transport, mirroring
// internal/metadata.NewFetcher's connection-pool sizing.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: defaultBaseURL,
	}
}
