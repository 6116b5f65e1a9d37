package interfaces

import "context"

// MarketData provides quotes for composing posts and paper trading.
// A (0, false) price means the quote was unavailable, not an error.
type MarketData interface {
	CurrentPrice(ctx context.Context, ticker string) (float64, bool)
	RecentLowHigh(ctx context.Context, ticker string) (low, high float64, ok bool)
}
