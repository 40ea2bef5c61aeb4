package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/marketpulse/internal/services/calculator"
)

// handleCalculator handles GET /api/calculator?type=sip|lumpsum&amount=&years=&rate=.
func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	calcType := strings.TrimSpace(r.URL.Query().Get("type"))
	if calcType == "" {
		WriteError(w, http.StatusBadRequest, "type is required (sip or lumpsum)")
		return
	}
	amount, ok := queryFloat(r, "amount")
	if !ok {
		WriteError(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	years, ok := queryInt(r, "years")
	if !ok {
		WriteError(w, http.StatusBadRequest, "years must be a whole number")
		return
	}
	rate, ok := queryFloat(r, "rate")
	if !ok {
		WriteError(w, http.StatusBadRequest, "rate must be a number")
		return
	}

	result, err := s.app.CalculatorService.Calculate(calcType, amount, years, rate)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_input")
			return
		}
		s.logger.Error().Err(err).Msg("Calculation failed")
		WriteError(w, http.StatusInternalServerError, "Calculation failed")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
