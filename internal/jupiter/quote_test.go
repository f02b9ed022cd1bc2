package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
)

func testClient(t *testing.T, body string) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	c := NewClient()
	c.baseURL = srv.URL
	return c, srv.Close
}

func TestQuoteBuy(t *testing.T) {
	c, closeFn := testClient(t, `{"inAmount":"1000000000","outAmount":"5000000","priceImpactPct":"0.0123"}`)
	defer closeFn()

	q, err := c.Quote(context.Background(), solanago.PublicKey{1}, router.SideBuy, 1)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.TokensOut != 5_000_000 {
		t.Fatalf("tokens out = %v", q.TokensOut)
	}
	if q.PriceImpactBp != 123 {
		t.Fatalf("price impact bp = %v", q.PriceImpactBp)
	}
}

func TestQuoteSell(t *testing.T) {
	c, closeFn := testClient(t, `{"inAmount":"5000000","outAmount":"900000000","priceImpactPct":"0.01"}`)
	defer closeFn()

	q, err := c.Quote(context.Background(), solanago.PublicKey{1}, router.SideSell, 5_000_000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.LamportsOut != 900_000_000 {
		t.Fatalf("lamports out = %v", q.LamportsOut)
	}
}

func TestSpotPrice(t *testing.T) {
	c, closeFn := testClient(t, `{"inAmount":"1000000","outAmount":"10000000","priceImpactPct":"0"}`)
	defer closeFn()

	price, err := c.SpotPrice(context.Background(), solanago.PublicKey{1})
	if err != nil {
		t.Fatalf("spot price: %v", err)
	}
	if price <= 0 {
		t.Fatalf("expected positive spot price, got %v", price)
	}
}
