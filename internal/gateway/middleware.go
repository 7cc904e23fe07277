package gateway

import (
	"net/http"
	"time"

	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if h.Log != nil {
			h.Log.Log(telemetry.Info, "gateway", r.Method+" "+r.URL.Path+" "+time.Since(start).String())
		}
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
