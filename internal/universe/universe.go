// Package universe maintains the set of recognized ticker symbols:
// a file-backed base list plus fixed sets of major indices, ETFs, FX
// pairs, and cryptos, with a separate macro-ticker allow-list consulted
// as a secondary check. Read-only after load.
package universe

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"
)

// builtin covers major indices, ETFs, FX pairs, and cryptos that are
// always tradable regardless of the ticker file contents.
var builtin = []string{
	"SPY", "DIA", "QQQ", "IWM", "VTI", "VOO", "IVV", "S&P500", "DJIA", "NASDAQ",
	"EURUSD", "USDJPY", "GBPUSD", "AUDUSD", "USDCAD", "USDCHF", "NZDUSD",
	"BTC", "ETH", "BTCUSD", "ETHUSD", "SOL", "ADA", "XRP", "DOGE", "BNB",
}

// macro is the secondary allow-list of commodity and rates ETFs.
var macro = []string{"OIL", "USO", "GLD", "SLV", "DBC", "UUP", "TLT", "TIP"}

var tickerPattern = regexp.MustCompile(`(\$?[A-Z]{2,6})`)

// indexNames maps spelled-out index names found in text to tickers.
var indexNames = map[string]string{
	"S&P 500":      "SPY",
	"DOW":          "DIA",
	"NASDAQ":       "QQQ",
	"RUSSELL 2000": "IWM",
	"FTSE":         "FTSE",
	"DAX":          "DAX",
	"NIKKEI":       "NIKKEI",
}

// Universe is the recognized symbol set.
type Universe struct {
	tickers map[string]struct{}
	macros  map[string]struct{}
}

// Load builds the universe from the ticker file (one symbol per line;
// a missing file yields just the builtin sets) plus the fixed sets.
func Load(tickerFile string) (*Universe, error) {
	u := &Universe{
		tickers: make(map[string]struct{}),
		macros:  make(map[string]struct{}),
	}

	if tickerFile != "" {
		f, err := os.Open(tickerFile)
		if err == nil {
			defer f.Close()
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				t := strings.ToUpper(strings.TrimSpace(scanner.Text()))
				if t != "" {
					u.tickers[t] = struct{}{}
				}
			}
			if err := scanner.Err(); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	for _, t := range builtin {
		u.tickers[t] = struct{}{}
	}
	for _, t := range macro {
		u.macros[t] = struct{}{}
	}
	return u, nil
}

// Contains reports whether ticker is in the primary universe.
func (u *Universe) Contains(ticker string) bool {
	_, ok := u.tickers[strings.ToUpper(ticker)]
	return ok
}

// IsMacro reports whether ticker is on the macro allow-list.
func (u *Universe) IsMacro(ticker string) bool {
	_, ok := u.macros[strings.ToUpper(ticker)]
	return ok
}

// Known reports whether ticker is acceptable for posting: member of the
// primary universe or the macro allow-list.
func (u *Universe) Known(ticker string) bool {
	return u.Contains(ticker) || u.IsMacro(ticker)
}

// Size returns the primary universe size.
func (u *Universe) Size() int {
	return len(u.tickers)
}

// Extract returns the sorted set of $-prefixed symbols recognized in
// text: explicit $TICKER or bare TICKER mentions that are in the
// universe, plus spelled-out index names mapped to their ETF tickers.
func (u *Universe) Extract(text string) []string {
	found := make(map[string]struct{})
	up := strings.ToUpper(text)

	for _, m := range tickerPattern.FindAllString(up, -1) {
		t := strings.TrimPrefix(m, "$")
		if u.Contains(t) {
			found["$"+t] = struct{}{}
		}
	}
	for name, ticker := range indexNames {
		if strings.Contains(up, name) {
			found["$"+ticker] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
