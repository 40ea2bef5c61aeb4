// Package calculator projects SIP and lump-sum investment outcomes
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/interfaces"
	"github.com/bobmcallan/marketpulse/internal/models"
)

// ErrInvalidInput is returned for non-positive amounts or tenures, negative
// rates and unknown calculation types.
var ErrInvalidInput = errors.New("invalid calculator input")

// MaxYears bounds the tenure
const MaxYears = 100

// Service implements CalculatorService
type Service struct {
	logger *common.Logger
}

// NewService creates a new calculator service
func NewService(logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{logger: logger}
}

// Calculate runs the named projection. calcType is case-insensitive.
func (s *Service) Calculate(calcType string, amount float64, years int, rate float64) (*models.CalculationResult, error) {
	if err := validate(amount, years, rate); err != nil {
		return nil, err
	}

	var invested, maturity float64
	switch t := strings.ToLower(strings.TrimSpace(calcType)); t {
	case models.CalculationSIP:
		invested, maturity = SIP(amount, years, rate)
		calcType = t
	case models.CalculationLumpsum:
		invested, maturity = Lumpsum(amount, years, rate)
		calcType = t
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, calcType)
	}

	s.logger.Debug().Str("type", calcType).Float64("amount", amount).Int("years", years).Float64("rate", rate).
		Float64("maturity", maturity).Msg("Calculation complete")

	return &models.CalculationResult{
		Type:            calcType,
		Amount:          amount,
		Years:           years,
		Rate:            rate,
		TotalInvestment: round2(invested),
		TotalReturns:    round2(maturity - invested),
		MaturityValue:   round2(maturity),
	}, nil
}

func validate(amount float64, years int, rate float64) error {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	case years <= 0 || years > MaxYears:
		return fmt.Errorf("%w: years must be between 1 and %d", ErrInvalidInput, MaxYears)
	case math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0:
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	}
	return nil
}

// SIP returns the total invested and maturity value of a monthly instalment
// paid at the start of each month and compounded monthly at ratePct per year.
func SIP(monthly float64, years int, ratePct float64) (invested, maturity float64) {
	n := float64(years * 12)
	invested = monthly * n

	r := ratePct / 1200
	if r == 0 {
		return invested, invested
	}
	maturity = monthly * (math.Pow(1+r, n) - 1) / r * (1 + r)
	return invested, maturity
}

// Lumpsum returns the invested amount and its value after years of annual
// compounding at ratePct.
func Lumpsum(amount float64, years int, ratePct float64) (invested, maturity float64) {
	return amount, amount * math.Pow(1+ratePct/100, float64(years))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure Service implements CalculatorService
var _ interfaces.CalculatorService = (*Service)(nil)
