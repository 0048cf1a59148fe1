package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BrettMS9/multibagger/internal/api/handlers"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// NewRouter configures all HTTP routes. The metrics handler may be nil
// when metrics are disabled.
func NewRouter(
	screenHandler *handlers.ScreenHandler,
	cacheHandler *handlers.CacheHandler,
	metricsHandler http.Handler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Screening endpoints
	api.HandleFunc("/screen", screenHandler.ScreenBatch).Methods("POST")
	api.HandleFunc("/screen/{ticker}", screenHandler.Screen).Methods("POST")

	// Result history
	api.HandleFunc("/results/top", screenHandler.TopScorers).Methods("GET")
	api.HandleFunc("/results/{ticker}", screenHandler.History).Methods("GET")

	// Record cache maintenance
	api.HandleFunc("/cache/stats", cacheHandler.Stats).Methods("GET")
	api.HandleFunc("/cache/purge-stale", cacheHandler.PurgeStale).Methods("POST")
	api.HandleFunc("/cache/purge", cacheHandler.PurgeAll).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "multibagger-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
