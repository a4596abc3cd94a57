package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"portfolio-machine/config"
	"portfolio-machine/internal/app"
	"portfolio-machine/services"

	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if err := h.app.HealthDB(r.Context()); err == nil {
		status["services"].(map[string]string)["database"] = "connected"
	} else if h.cfg.HasDatabase() {
		status["services"].(map[string]string)["database"] = "disconnected"
		status["status"] = "degraded"
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleGetSnapshot builds and returns the portfolio snapshot for a user.
// An absent user_id falls back to the configured default user.
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	snapshot, err := h.app.Snapshot(r.Context(), userID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, snapshot)
}

// HandleGetSubscriptions returns the user's ticker subscriptions
func (h *Handler) HandleGetSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	subs, err := h.app.Subscriptions(r.Context(), userID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"subscriptions": subs,
		"count":         len(subs),
	})
}

// TickerRequest represents a subscription change request
type TickerRequest struct {
	UserID    string `json:"user_id"`
	Ticker    string `json:"ticker"`
	AssetType string `json:"asset_type"`
}

// HandleAddTicker subscribes a user to a ticker
func (h *Handler) HandleAddTicker(w http.ResponseWriter, r *http.Request) {
	var req TickerRequest

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&req)
	} else {
		_ = r.ParseForm()
		req.UserID = r.FormValue("user_id")
		req.Ticker = r.FormValue("ticker")
		req.AssetType = r.FormValue("asset_type")
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if err := h.ValidateSymbol(req.Ticker); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.app.AddTicker(r.Context(), req.UserID, req.Ticker, req.AssetType)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

// HandleRemoveTicker unsubscribes a user from a ticker
func (h *Handler) HandleRemoveTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		h.jsonError(w, "Ticker is required", http.StatusBadRequest)
		return
	}
	userID := r.URL.Query().Get("user_id")

	removed, err := h.app.RemoveTicker(r.Context(), userID, ticker)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		h.jsonError(w, "Subscription not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, map[string]string{"status": "removed", "ticker": strings.ToUpper(ticker)})
}

// HandleRefreshSentiment re-classifies sentiment for all subscribed tickers
func (h *Handler) HandleRefreshSentiment(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.RefreshSentiment(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, result)
}

// ValidateSymbol validates a ticker symbol
func (h *Handler) ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("ticker is required")
	}

	if len(symbol) > 10 {
		return fmt.Errorf("ticker too long (max 10 characters)")
	}

	matched, _ := regexp.MatchString("^[A-Z0-9.-]+$", symbol)
	if !matched {
		return fmt.Errorf("invalid ticker format (alphanumeric, dots, and dashes only)")
	}

	return nil
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
