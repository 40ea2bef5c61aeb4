package marketdata

// Logical index symbols served by the dashboard
const (
	SymbolSensex = "^BSESN"
	SymbolNifty  = "^NSEI"
)

// ETFs quoted in place of indices the upstream cannot price directly
const (
	TickerSensexProxy = "SENSEXBEES.BSE" // Nippon India ETF Sensex BeES
	TickerNiftyProxy  = "NIFTYBEES.BSE"  // Nippon India ETF Nifty BeES
)

var proxyTickers = map[string]string{
	SymbolSensex: TickerSensexProxy,
	SymbolNifty:  TickerNiftyProxy,
}

// ResolveTicker maps a logical symbol to the ticker requested upstream.
// Symbols without a proxy pass through unchanged.
func ResolveTicker(symbol string) string {
	if t, ok := proxyTickers[symbol]; ok {
		return t
	}
	return symbol
}

// IndexProfile holds the per-symbol constants used for rescaling and mock data.
type IndexProfile struct {
	// Base is the index level a proxy price is rescaled to
	Base float64
	// MockPrice, MockChange and MockChangePercent form the fallback quote
	MockPrice         float64
	MockChange        float64
	MockChangePercent float64
	// Volatility drives the synthetic history, in percent per day
	Volatility float64
}

var sensexProfile = IndexProfile{
	Base:              72000,
	MockPrice:         72156.42,
	MockChange:        156.42,
	MockChangePercent: 0.22,
	Volatility:        0.8,
}

var niftyProfile = IndexProfile{
	Base:              21800,
	MockPrice:         21848.75,
	MockChange:        48.75,
	MockChangePercent: 0.23,
	Volatility:        0.6,
}

// Anything that is not SENSEX is scaled and mocked against the NIFTY level.
var defaultProfile = IndexProfile{
	Base:       21800,
	MockPrice:  21848.75,
	Volatility: 0.6,
}

// ProfileFor returns the index profile of a logical symbol.
func ProfileFor(symbol string) IndexProfile {
	switch symbol {
	case SymbolSensex:
		return sensexProfile
	case SymbolNifty:
		return niftyProfile
	default:
		return defaultProfile
	}
}
