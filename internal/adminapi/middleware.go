package adminapi

import (
	"net/http"
	"runtime/debug"
	"time"

	"raptor/pkg/logging"
)

// recovery catches a panic in any handler so one bad admin request never
// takes the whole process down.
func recovery(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if log != nil {
						log.Error("adminapi: panic recovered",
							logging.Any("error", err),
							logging.String("stack", string(debug.Stack())))
					}
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLogging logs every admin request's method, path, status and
// latency.
func requestLogging(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			if log != nil {
				log.Info("adminapi: request",
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.Int("status", sw.status),
					logging.LatencyMs(float64(time.Since(start).Microseconds())/1000))
			}
		})
	}
}
