package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/marketpulse/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// Market data
	mux.HandleFunc("/api/markets/quote/{symbol}", s.handleMarketQuote)
	mux.HandleFunc("/api/markets/history/{symbol}", s.handleMarketHistory)
	mux.HandleFunc("/api/markets/movers", s.handleMarketMovers)
	mux.HandleFunc("/api/markets/funds", s.handleMutualFunds)
	mux.HandleFunc("/api/markets/overview", s.handleMarketOverview)
	mux.HandleFunc("/api/markets/chart.png", s.handleIndexChart)

	// Calculator
	mux.HandleFunc("/api/calculator", s.handleCalculator)

	// Admin
	mux.HandleFunc("/api/admin/cache", s.handleAdminCache)
	mux.HandleFunc("/api/admin/upstream", s.handleAdminUpstream)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":   common.GetVersion(),
		"build":     common.GetBuild(),
		"commit":    common.GetGitCommit(),
		"live_data": s.app.QuoteClient != nil,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
