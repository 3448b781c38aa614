package http

import (
	"net/http"
	"sync/atomic"

	"github.com/pribylovaa/threads-service/internal/transport/http/middleware"
)

// NewOpsHandler собирает служебный HTTP: /livez, /healthz (по флагу ready) и /metrics.
// Логирования запросов нет, чтобы пробы и скрейпы не засоряли лог.
func NewOpsHandler(ready *atomic.Bool, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	return middleware.Chain(mux, middleware.Recover(), middleware.RequestID())
}
