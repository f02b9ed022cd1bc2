package websocket

import (
	"sync"
	"testing"
	"time"

	"raptor/internal/models"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestOriginChecker_Check(t *testing.T) {
	checker := &OriginChecker{
		allowedOrigins: map[string]struct{}{
			"http://localhost:3000": {},
			"https://example.com":   {},
		},
		allowAll: false,
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"https://example.com", true},
		{"http://evil.com", false},
		{"http://localhost:8080", false},
	}

	for _, tt := range tests {
		got := checker.Check(tt.origin)
		if got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginChecker_AllowAll(t *testing.T) {
	checker := &OriginChecker{allowAll: true}

	for _, origin := range []string{
		"http://localhost:3000",
		"https://evil.com",
		"http://anything.example.org",
	} {
		if !checker.Check(origin) {
			t.Errorf("allowAll=true but Check(%q) = false", origin)
		}
	}
}

func TestHub_BroadcastDropsSlowClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	// An unbuffered send channel with no reader is a client that can never keep up.
	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow

	for i := 0; i < 10000; i++ {
		hub.Broadcast(map[string]int{"i": i})
	}
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("expected the slow client to be dropped, got %d clients", hub.ClientCount())
	}
}

func TestHub_BroadcastOpportunity(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	hub.BroadcastOpportunity(&models.Opportunity{TokenMint: "mint1", Score: 80})
	time.Sleep(5 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func BenchmarkHub_Broadcast(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()

	msg := map[string]interface{}{"type": "test", "data": "benchmark message"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.Broadcast(msg)
	}
}

func BenchmarkHub_BroadcastOpportunity(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()

	o := &models.Opportunity{
		TokenMint: "So11111111111111111111111111111111111111112",
		Score:     75,
		Reasons:   []string{"liquidity_ok", "holder_spread_ok"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.BroadcastOpportunity(o)
	}
}

func BenchmarkOriginChecker_Check(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		originChecker.Check("http://localhost:3000")
	}
}

func BenchmarkHub_ClientCount(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hub.ClientCount()
	}
}

func BenchmarkHub_ConcurrentBroadcast(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()

	msg := map[string]string{"type": "test"}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			hub.Broadcast(msg)
		}
	})
}

func BenchmarkClientPool(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client := clientPool.Get().(*Client)
		clientPool.Put(client)
	}
}

func BenchmarkHub_ManyClients(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()

	var clients []*Client
	for i := 0; i < 100; i++ {
		client := &Client{
			hub:  hub,
			send: make(chan []byte, clientSendBufferSize),
		}
		hub.register <- client
		clients = append(clients, client)

		go func(c *Client) {
			for range c.send {
			}
		}(client)
	}

	time.Sleep(50 * time.Millisecond)

	msg := map[string]string{"type": "test", "data": "benchmark"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.Broadcast(msg)
	}
	b.StopTimer()

	for _, c := range clients {
		hub.unregister <- c
	}
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	var wg sync.WaitGroup
	const goroutines = 10
	const operations = 1000

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				hub.Broadcast(map[string]int{"goroutine": id, "op": j})
			}
		}(i)
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				_ = hub.ClientCount()
			}
		}()
	}

	wg.Wait()
}
