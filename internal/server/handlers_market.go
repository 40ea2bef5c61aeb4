package server

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/marketpulse/internal/models"
	"github.com/bobmcallan/marketpulse/internal/services/marketdata"
)

// handleMarketQuote handles GET /api/markets/quote/{symbol}.
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, errMsg := validateSymbol(r.PathValue("symbol"))
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.MarketData.FetchStockData(r.Context(), symbol))
}

// handleMarketHistory handles GET /api/markets/history/{symbol}.
func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, errMsg := validateSymbol(r.PathValue("symbol"))
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.MarketData.FetchHistoricalData(r.Context(), symbol))
}

// handleMarketMovers handles GET /api/markets/movers.
func (s *Server) handleMarketMovers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.MarketData.FetchMarketMovers())
}

// handleMutualFunds handles GET /api/markets/funds.
func (s *Server) handleMutualFunds(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.MarketData.FetchMutualFunds())
}

// handleMarketOverview handles GET /api/markets/overview: both index quotes
// plus the movers and funds lists, as rendered on the landing page.
func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	md := s.app.MarketData
	ctx := r.Context()
	WriteJSON(w, http.StatusOK, models.MarketOverview{
		Sensex: md.FetchStockData(ctx, marketdata.SymbolSensex),
		Nifty:  md.FetchStockData(ctx, marketdata.SymbolNifty),
		Movers: md.FetchMarketMovers(),
		Funds:  md.FetchMutualFunds(),
	})
}

// handleIndexChart handles GET /api/markets/chart.png.
func (s *Server) handleIndexChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.MarketData.RenderIndexChart(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Index chart render failed")
		WriteError(w, http.StatusInternalServerError, "Chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
