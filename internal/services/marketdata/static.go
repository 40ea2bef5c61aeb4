package marketdata

import "github.com/bobmcallan/marketpulse/internal/models"

// Illustrative movers shown on the landing page. Not fetched from upstream.
var (
	topGainers = []models.MarketMover{
		{Ticker: "HDFC Bank", Price: "1475.60", ChangePercentage: "2.8"},
		{Ticker: "Reliance", Price: "2342.15", ChangePercentage: "2.3"},
		{Ticker: "TCS", Price: "3890.25", ChangePercentage: "1.9"},
		{Ticker: "Bajaj Finance", Price: "6890.45", ChangePercentage: "1.7"},
		{Ticker: "Asian Paints", Price: "3245.80", ChangePercentage: "1.5"},
	}
	topLosers = []models.MarketMover{
		{Ticker: "Tech Mahindra", Price: "1234.50", ChangePercentage: "-2.1"},
		{Ticker: "Infosys", Price: "1567.30", ChangePercentage: "-1.8"},
		{Ticker: "ITC", Price: "432.45", ChangePercentage: "-1.5"},
		{Ticker: "HUL", Price: "2456.70", ChangePercentage: "-1.2"},
		{Ticker: "Wipro", Price: "456.75", ChangePercentage: "-1.0"},
	}
)

var smallCapFunds = []models.MutualFund{
	{Name: "Quant Small Cap Fund", OneYearReturn: 48.5, ThreeYearReturn: 39.2, AUM: "₹8,245 Cr"},
	{Name: "Nippon India Small Cap Fund", OneYearReturn: 42.8, ThreeYearReturn: 35.6, AUM: "₹42,337 Cr"},
	{Name: "SBI Small Cap Fund", OneYearReturn: 39.2, ThreeYearReturn: 32.1, AUM: "₹21,892 Cr"},
	{Name: "Axis Small Cap Fund", OneYearReturn: 37.5, ThreeYearReturn: 31.8, AUM: "₹15,678 Cr"},
	{Name: "Kotak Small Cap Fund", OneYearReturn: 36.4, ThreeYearReturn: 30.5, AUM: "₹12,456 Cr"},
}

// FetchMarketMovers returns the fixed gainers and losers lists.
func (s *Service) FetchMarketMovers() models.MarketMovers {
	return models.MarketMovers{
		Gainers: append([]models.MarketMover(nil), topGainers...),
		Losers:  append([]models.MarketMover(nil), topLosers...),
	}
}

// FetchMutualFunds returns the fixed small-cap fund rankings, best first.
func (s *Service) FetchMutualFunds() []models.MutualFund {
	return append([]models.MutualFund(nil), smallCapFunds...)
}
