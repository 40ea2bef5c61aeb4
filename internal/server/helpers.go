package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// symbolPattern accepts index symbols (^BSESN) and exchange tickers (RELIANCE.BSE).
var symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9._-]{0,19}$`)

// validateSymbol normalizes a path symbol and checks it against symbolPattern.
// Returns the normalized symbol, or an error message for the client.
func validateSymbol(raw string) (string, string) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", "symbol is required"
	}
	if len(symbol) > 20 {
		return "", "symbol must be at most 20 characters"
	}
	if strings.Contains(symbol, "..") || !symbolPattern.MatchString(symbol) {
		return "", "symbol may contain only a leading ^, letters, digits, '.', '-' and '_'"
	}
	return symbol, ""
}

// queryFloat reads a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get(name)), 64)
	return v, err == nil
}

// queryInt reads a required integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	return v, err == nil
}
