package marketdata

import (
	"math"
	"time"

	"github.com/bobmcallan/marketpulse/internal/models"
)

// HistoryLength is the number of daily points served for a chart
const HistoryLength = 30

// GeneratePriceMovements builds a reproducible price path of the given length
// starting at base. Each step adds a sinusoidal trend and an alternating daily
// swing, both proportional to volatility (percent).
func GeneratePriceMovements(base float64, days int, volatility float64) []float64 {
	if days <= 0 {
		return nil
	}

	prices := make([]float64, days)
	prices[0] = base

	for i := 1; i < days; i++ {
		prev := prices[i-1]
		trend := math.Sin(float64(i)/5) * volatility * 0.5
		movement := prev * (trend / 100)

		sign := -1.0
		if i%2 == 0 {
			sign = 1.0
		}
		daily := prev * (volatility / 100) * sign

		prices[i] = prev + movement + daily
	}

	return prices
}

// mockQuote is the fixed fallback quote for a logical symbol.
func mockQuote(symbol string) models.MarketQuote {
	p := ProfileFor(symbol)
	return models.MarketQuote{
		Symbol:        symbol,
		Price:         p.MockPrice,
		Change:        p.MockChange,
		ChangePercent: p.MockChangePercent,
		Source:        models.SourceMock,
	}
}

// mockHistory is a synthetic series of HistoryLength calendar days ending on today's date.
func mockHistory(symbol string, today time.Time) []models.HistoricalPoint {
	p := ProfileFor(symbol)
	prices := GeneratePriceMovements(p.MockPrice, HistoryLength, p.Volatility)

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	points := make([]models.HistoricalPoint, HistoryLength)
	for i := range points {
		points[i] = models.HistoricalPoint{
			Date:  day.AddDate(0, 0, -(HistoryLength - 1 - i)).Format("2006-01-02"),
			Price: prices[i],
		}
	}
	return points
}
