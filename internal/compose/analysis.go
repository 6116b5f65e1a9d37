package compose

import (
	"fmt"
	"strings"
	"time"

	"scryptbot/internal/types"
)

// Analysis renders the reply posted under a feed item that mentioned
// companies. Returns "" when there is nothing to report.
func Analysis(companies []types.Company, now time.Time) string {
	if len(companies) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("📊 FINANCIAL ANALYSIS\n\n")

	for _, c := range companies {
		emoji := "➡️"
		if c.Sentiment > 0 {
			emoji = "📈"
		} else if c.Sentiment < 0 {
			emoji = "📉"
		}

		signal := "HOLD"
		if c.Sentiment > 0.3 {
			signal = "BUY"
		} else if c.Sentiment < -0.3 {
			signal = "SELL"
		}

		confidence := "LOW"
		if abs := absFloat(c.Sentiment); abs > 0.5 {
			confidence = "HIGH"
		} else if abs > 0.2 {
			confidence = "MEDIUM"
		}

		fmt.Fprintf(&b, "%s %s (%s)\n", emoji, c.Name, c.Ticker)
		fmt.Fprintf(&b, "   Sentiment: %.3f (%s)\n", c.Sentiment, confidence)
		fmt.Fprintf(&b, "   Signal: %s\n\n", signal)
	}

	fmt.Fprintf(&b, "⏰ %s\n", now.Format("15:04:05"))
	b.WriteString("\n#FinancialAnalysis #TradingSignals #StockMarket")
	return b.String()
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
