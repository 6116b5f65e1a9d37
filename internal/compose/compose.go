// Package compose builds the published post text from a judgment and
// optional market context. Posts are capped at a configurable length;
// when a post runs over, optional lines are dropped before any hard
// cut of the mandatory content.
package compose

import (
	"fmt"
	"strings"

	"scryptbot/internal/types"
)

// DefaultMaxLen is the platform post length limit.
const DefaultMaxLen = 240

const maxRationaleLen = 100

var sentimentEmoji = map[string]string{
	"positive": "🟢",
	"negative": "🔴",
	"neutral":  "⚪",
}

var actionEmoji = map[string]string{
	"buy":  "💰",
	"sell": "🛑",
	"hold": "🤷",
}

func emojiFor(m map[string]string, key, fallback string) string {
	if e, ok := m[strings.ToLower(key)]; ok {
		return e
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Compose renders the post for a judged headline. market supplies the
// optional price and stop-suggestion lines; zero-value fields omit them.
func Compose(judgment types.Judgment, instrument string, market types.MarketContext, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	rationale := strings.TrimSpace(judgment.Rationale)
	if r := []rune(rationale); len(r) > maxRationaleLen {
		rationale = string(r[:maxRationaleLen])
	}

	header := fmt.Sprintf("%s %s | %s %s signal",
		emojiFor(sentimentEmoji, judgment.Sentiment, "⚪"),
		capitalize(judgment.Sentiment),
		emojiFor(actionEmoji, judgment.Action, "❓"),
		capitalize(judgment.Action))

	var priceLine, impactLine, stopLine string
	if market.HasPrice {
		priceLine = fmt.Sprintf("Current $%s price: $%.2f", instrument, market.Price)
	}
	if judgment.ExpectedImpact != "" {
		impactLine = "Expected impact: " + judgment.ExpectedImpact
	}
	if market.HasLowHigh {
		switch strings.ToLower(judgment.Action) {
		case "buy":
			stopLine = fmt.Sprintf("Consider stop below $%.2f (recent low)", market.DayLow)
		case "sell":
			stopLine = fmt.Sprintf("Consider stop above $%.2f (recent high)", market.DayHigh)
		}
	}

	mandatory := []string{"🚨 " + judgment.Summary, header}
	suffix := []string{rationale, "$" + instrument, "#StockMarket #Macro"}

	// Least important first: each drop round removes one more optional
	// line before any mandatory content is cut.
	optional := []string{priceLine, impactLine, stopLine}
	for drop := 0; drop <= len(optional); drop++ {
		kept := optional[:len(optional)-drop]
		post := assemble(mandatory, kept, suffix)
		if len([]rune(post)) <= maxLen {
			return post
		}
	}

	post := assemble(mandatory, nil, suffix)
	return string([]rune(post)[:maxLen])
}

func assemble(mandatory, optional, suffix []string) string {
	lines := make([]string, 0, len(mandatory)+len(optional)+len(suffix))
	for _, group := range [][]string{mandatory, optional, suffix} {
		for _, l := range group {
			if l != "" {
				lines = append(lines, l)
			}
		}
	}
	return strings.Join(lines, "\n")
}
