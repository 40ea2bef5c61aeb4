package models

// Calculation types
const (
	CalculationSIP     = "sip"
	CalculationLumpsum = "lumpsum"
)

// CalculationResult holds the outcome of an investment projection
type CalculationResult struct {
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"` // monthly instalment for sip, one-off for lumpsum
	Years           int     `json:"years"`
	Rate            float64 `json:"rate"` // expected annual return, percent
	TotalInvestment float64 `json:"total_investment"`
	TotalReturns    float64 `json:"total_returns"`
	MaturityValue   float64 `json:"maturity_value"`
}
