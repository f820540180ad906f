package collector

import "strings"

// Common acronyms, indices, and ETFs that screeners and social feeds keep
// surfacing but that are never individual stock picks.
var noiseTickers = map[string]bool{
	"FAQ": true, "DD": true, "CEO": true, "GDP": true, "IPO": true,
	"ATH": true, "ATL": true, "IMO": true, "YOLO": true, "FYI": true,
	"EPS": true, "USA": true, "USD": true, "EUR": true, "GBP": true,
	"ETF": true, "SEC": true, "FED": true, "CPI": true, "FOMC": true,
	"HODL": true, "DCA": true, "TLDR": true, "FUD": true,
	"VIX": true, "GSPC": true, "DJI": true, "IXIC": true, "FTSE": true,
	"DAX": true, "CAC": true,
	"VOO": true, "SPY": true, "QQQ": true, "SCHD": true, "VTI": true,
	"IWM": true, "DIA": true, "ARKK": true, "TQQQ": true, "SQQQ": true,
	"JEPI": true, "JEPQ": true, "GLD": true, "SLV": true, "TLT": true,
	"HYG": true, "LQD": true, "AGG": true, "EFA": true, "EEM": true,
}

// ValidTicker filters out acronyms, indices, and ETFs. Tickers of one or
// two characters from social sources are almost always noise.
func ValidTicker(ticker string) bool {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	if len(upper) <= 2 {
		return false
	}
	return !noiseTickers[upper]
}
