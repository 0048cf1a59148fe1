package handlers

import (
	"net/http"

	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// CacheHandler exposes record cache inspection and maintenance.
type CacheHandler struct {
	cache  *records.Cache
	logger *logger.Logger
}

func NewCacheHandler(cache *records.Cache, log *logger.Logger) *CacheHandler {
	return &CacheHandler{cache: cache, logger: log}
}

// Stats returns total, fresh, and stale record counts.
// GET /api/cache/stats
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache stats")
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// PurgeStale removes records outside the freshness window.
// POST /api/cache/purge-stale
func (h *CacheHandler) PurgeStale(w http.ResponseWriter, r *http.Request) {
	removed, err := h.cache.PurgeStale(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to purge stale records")
		respondError(w, http.StatusInternalServerError, "Failed to purge stale records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// PurgeAll empties the record cache entirely.
// POST /api/cache/purge
func (h *CacheHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.cache.PurgeAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to purge record cache")
		respondError(w, http.StatusInternalServerError, "Failed to purge record cache")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
