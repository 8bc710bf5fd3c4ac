package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kinjo-energy/kinjo/core/logger"
	"github.com/kinjo-energy/kinjo/core/monitoring"
)

// Recover reports handler panics to the monitor and answers 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				monitoring.CaptureException(fmt.Errorf("panic: %v", rec), map[string]string{
					"module": "api",
					"path":   r.URL.Path,
				})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Log writes one debug line per request.
func Log(log logger.Logger, next http.Handler) http.Handler {
	log = logger.OrNop(log)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		log.Debugw("http request", map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sr.status,
			"duration": time.Since(start).String(),
		})
	})
}
