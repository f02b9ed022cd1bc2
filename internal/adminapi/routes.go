package adminapi

import (
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"raptor/internal/audit"
	"raptor/internal/store"
	"raptor/internal/websocket"
	"raptor/pkg/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies wires the read-only state raptorctl's admin endpoints
// expose. Nil fields simply disable the endpoints that need them.
type Dependencies struct {
	Store  *store.Store
	Trades *audit.TradeLog
	Log    *logging.Logger

	// Hub, if set, backs the /debug/stream websocket endpoint with a live
	// feed of position and trade updates. Nil disables the endpoint.
	Hub *websocket.Hub

	DebugUsername string
	DebugPassword string
	Env           string
}

// SetupRoutes builds raptorctl's router: a public /health, a Prometheus
// /metrics, a DebugAuth-gated /debug/pprof/* and /debug/runtime, and a
// DebugAuth-gated /admin/* read-only inspection surface.
func SetupRoutes(deps *Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery(deps.Log))
	r.Use(requestLogging(deps.Log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth := DebugAuth(deps.DebugUsername, deps.DebugPassword, deps.Env)

	debug := r.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(auth)
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"heap", "goroutine", "block", "threadcreate", "mutex", "allocs"} {
		h := pprof.Handler(name)
		debug.Handle("/"+name, h)
	}

	r.Handle("/debug/runtime", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"goroutines":       runtime.NumGoroutine(),
			"heap_alloc_mb":     float64(m.HeapAlloc) / 1024 / 1024,
			"heap_sys_mb":       float64(m.HeapSys) / 1024 / 1024,
			"num_gc":            m.NumGC,
			"gc_pause_total_ms": float64(m.PauseTotalNs) / 1e6,
		})
	}))).Methods("GET")

	if deps.Hub != nil {
		r.Handle("/debug/stream", auth(streamHandler(deps))).Methods("GET")
	}

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth)

	if deps.Trades != nil {
		admin.HandleFunc("/trades", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, deps.Trades.Recent(200))
		}).Methods("GET")
	}

	if deps.Store != nil {
		admin.HandleFunc("/positions", func(w http.ResponseWriter, r *http.Request) {
			positions, err := deps.Store.Positions.ListMonitoring()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, positions)
		}).Methods("GET")

		admin.HandleFunc("/candidates", func(w http.ResponseWriter, r *http.Request) {
			candidates, err := deps.Store.LaunchCandidates.ListPending(time.Now(), 200)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, candidates)
		}).Methods("GET")
	}

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
