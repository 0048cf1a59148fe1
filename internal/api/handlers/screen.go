// Package handlers implements the HTTP API handlers for the screener.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BrettMS9/multibagger/internal/acquire"
	"github.com/BrettMS9/multibagger/internal/screening"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// ScreenHandler handles screening and result-history endpoints.
type ScreenHandler struct {
	service *screening.Service
	workers int
	logger  *logger.Logger
}

func NewScreenHandler(service *screening.Service, workers int, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		service: service,
		workers: workers,
		logger:  log,
	}
}

// Screen scores a single ticker, fetching upstream data as needed.
// POST /api/screen/{ticker}
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	result, err := h.service.Screen(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, acquire.ErrPrimaryProvider) {
			h.logger.WithError(err).WithField("ticker", ticker).Warn("Screening failed, no fundamentals available")
			respondError(w, http.StatusBadGateway, "No fundamentals available for "+ticker)
			return
		}
		h.logger.WithError(err).WithField("ticker", ticker).Error("Screening failed")
		respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Tickers []string `json:"tickers"`
	Workers int      `json:"workers,omitempty"`
}

// ScreenBatch scores a list of tickers with bounded concurrency.
// POST /api/screen
func (h *ScreenHandler) ScreenBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Tickers) == 0 {
		respondError(w, http.StatusBadRequest, "At least one ticker is required")
		return
	}

	workers := req.Workers
	if workers <= 0 {
		workers = h.workers
	}

	outcome, err := h.service.ScreenBatch(r.Context(), req.Tickers, workers)
	if err != nil {
		h.logger.WithError(err).Error("Batch screening failed")
		respondError(w, http.StatusInternalServerError, "Batch screening failed")
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// TopScorers returns the latest result per ticker above a threshold.
// GET /api/results/top?min=55&limit=20
func (h *ScreenHandler) TopScorers(w http.ResponseWriter, r *http.Request) {
	min := queryFloat(r, "min", 55)
	limit := queryInt(r, "limit", 20)

	results, err := h.service.TopScorers(r.Context(), min, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query top scorers")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve top scorers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"min_percentage": min,
		"count":          len(results),
		"results":        results,
	})
}

// History returns past screenings for one ticker, newest first.
// GET /api/results/{ticker}?limit=20
func (h *ScreenHandler) History(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	results, err := h.service.History(r.Context(), ticker, queryInt(r, "limit", 20))
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to query screening history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(results),
		"results": results,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return def
}
