package collector

import "strings"

var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "TUSD", "FDUSD", "BTC", "ETH", "BNB", "EUR", "USD"}

// NormalizePair converts "btcusdt", "BTC_USDT", "btc/usdt" or "BTC/USDT:USDT"
// into "BTC/USDT". It returns "" when no base/quote split is found.
func NormalizePair(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	for _, sep := range []string{"/", "_", "-"} {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			base, quote := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			if base == "" || quote == "" {
				return ""
			}
			return base + "/" + quote
		}
	}
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "/" + quote
		}
	}
	return ""
}

// binanceSymbol renders BTC/USDT as BTCUSDT.
func binanceSymbol(pair string) string {
	return strings.ReplaceAll(NormalizePair(pair), "/", "")
}

// gateSymbol renders BTC/USDT as BTC_USDT.
func gateSymbol(pair string) string {
	return strings.ReplaceAll(NormalizePair(pair), "/", "_")
}
