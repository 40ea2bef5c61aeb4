package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/services/marketdata"
)

// requireAdmin checks that the bearer token carried the admin role. Returns false if not admin.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}

	if !uc.IsAdmin() {
		WriteError(w, http.StatusForbidden, "Admin access required")
		return false
	}

	return true
}

// handleAdminCache handles GET /api/admin/cache (stats) and DELETE /api/admin/cache (purge).
func (s *Server) handleAdminCache(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	md := s.app.MarketData
	if r.Method == http.MethodDelete {
		removed := md.PurgeCache()
		s.logger.Info().
			Str("user", common.UserContextFromContext(r.Context()).UserID).
			Int("removed", removed).
			Msg("Admin purged market data cache")
		WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
		return
	}

	WriteJSON(w, http.StatusOK, md.CacheStats())
}

// handleAdminUpstream handles GET /api/admin/upstream, a live connectivity check.
func (s *Server) handleAdminUpstream(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	status, err := s.app.MarketData.CheckUpstream(r.Context())
	if err != nil {
		if errors.Is(err, marketdata.ErrNoUpstream) {
			WriteErrorWithCode(w, http.StatusServiceUnavailable, "Alpha Vantage API key not configured", "not_configured")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code := http.StatusOK
	if !status.OK {
		code = http.StatusBadGateway
	}
	WriteJSON(w, code, status)
}
