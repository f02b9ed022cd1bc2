package adminapi

import (
	"context"
	"net/http"
	"time"

	"raptor/internal/websocket"
)

// StartStreamPublisher polls the store and trade log at interval and fans
// any new rows out over deps.Hub. It is the only producer feeding the
// /debug/stream websocket; hunter and executor never talk to the hub
// directly, so raptorctl can be restarted without touching the trading
// processes. Call in its own goroutine; returns when ctx is done.
func StartStreamPublisher(ctx context.Context, deps *Dependencies, interval time.Duration) {
	if deps.Hub == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastSeen time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if deps.Store != nil {
				positions, err := deps.Store.Positions.ListMonitoring()
				if err == nil {
					for _, p := range positions {
						deps.Hub.BroadcastPosition(p)
					}
				}
			}

			if deps.Trades != nil {
				// Recent returns newest-first; walk until we hit an entry
				// already broadcast, then emit the rest oldest-first.
				recent := deps.Trades.Recent(50)
				fresh := 0
				for ; fresh < len(recent); fresh++ {
					if !recent[fresh].Timestamp.After(lastSeen) {
						break
					}
				}
				for i := fresh - 1; i >= 0; i-- {
					entry := recent[i]
					deps.Hub.BroadcastTrade(&entry)
				}
				if len(recent) > 0 {
					lastSeen = recent[0].Timestamp
				}
			}
		}
	}
}

func streamHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(deps.Hub, w, r)
	}
}
