package compose

import (
	"strings"
	"testing"

	"scryptbot/internal/types"
)

func baseJudgment() types.Judgment {
	return types.Judgment{
		Summary:        "Fed holds rates steady",
		Sentiment:      "positive",
		Instrument:     "SPY",
		Action:         "buy",
		Rationale:      "Dovish tone supports equities",
		ExpectedImpact: "+1%",
	}
}

func TestComposeFullPost(t *testing.T) {
	market := types.MarketContext{
		Price: 512.34, HasPrice: true,
		DayLow: 508.10, DayHigh: 514.90, HasLowHigh: true,
	}

	post := Compose(baseJudgment(), "SPY", market, DefaultMaxLen)

	for _, want := range []string{
		"🚨 Fed holds rates steady",
		"🟢 Positive | 💰 Buy signal",
		"Current $SPY price: $512.34",
		"Expected impact: +1%",
		"Consider stop below $508.10 (recent low)",
		"Dovish tone supports equities",
		"$SPY",
		"#StockMarket #Macro",
	} {
		if !strings.Contains(post, want) {
			t.Errorf("post missing %q:\n%s", want, post)
		}
	}
	if n := len([]rune(post)); n > DefaultMaxLen {
		t.Errorf("post length %d exceeds %d", n, DefaultMaxLen)
	}
}

func TestComposeSellUsesHighForStop(t *testing.T) {
	j := baseJudgment()
	j.Sentiment = "negative"
	j.Action = "sell"
	market := types.MarketContext{DayLow: 100, DayHigh: 110.55, HasLowHigh: true}

	post := Compose(j, "SPY", market, DefaultMaxLen)

	if !strings.Contains(post, "Consider stop above $110.55 (recent high)") {
		t.Errorf("sell post missing high-based stop:\n%s", post)
	}
	if !strings.Contains(post, "🔴 Negative | 🛑 Sell signal") {
		t.Errorf("sell post missing header:\n%s", post)
	}
}

func TestComposeOmitsLinesWithoutMarketData(t *testing.T) {
	j := baseJudgment()
	j.ExpectedImpact = ""

	post := Compose(j, "SPY", types.MarketContext{}, DefaultMaxLen)

	for _, absent := range []string{"Current $", "Expected impact", "Consider stop"} {
		if strings.Contains(post, absent) {
			t.Errorf("post should omit %q without market data:\n%s", absent, post)
		}
	}
	if strings.Contains(post, "\n\n") {
		t.Errorf("omitted lines left blank rows:\n%s", post)
	}
}

func TestComposeDropsOptionalLinesBeforeCutting(t *testing.T) {
	j := baseJudgment()
	j.Summary = strings.Repeat("Tariff news shakes markets ", 4)
	market := types.MarketContext{
		Price: 512.34, HasPrice: true,
		DayLow: 508.10, DayHigh: 514.90, HasLowHigh: true,
	}

	post := Compose(j, "SPY", market, DefaultMaxLen)

	if n := len([]rune(post)); n > DefaultMaxLen {
		t.Fatalf("post length %d exceeds %d", n, DefaultMaxLen)
	}
	// Stop line goes first, before any mandatory content is touched.
	if strings.Contains(post, "Consider stop") {
		t.Errorf("overlong post kept the stop line:\n%s", post)
	}
	if !strings.Contains(post, "#StockMarket #Macro") {
		t.Errorf("hashtags were cut before optional lines:\n%s", post)
	}
}

func TestComposeClipsRationale(t *testing.T) {
	j := baseJudgment()
	j.Rationale = strings.Repeat("x", 150)

	post := Compose(j, "SPY", types.MarketContext{}, 500)

	if strings.Contains(post, strings.Repeat("x", 101)) {
		t.Errorf("rationale not clipped to 100 chars:\n%s", post)
	}
	if !strings.Contains(post, strings.Repeat("x", 100)) {
		t.Errorf("rationale clipped too far:\n%s", post)
	}
}

func TestComposeUnknownActionEmoji(t *testing.T) {
	j := baseJudgment()
	j.Action = "ignore"

	post := Compose(j, "SPY", types.MarketContext{}, DefaultMaxLen)

	if !strings.Contains(post, "❓ Ignore signal") {
		t.Errorf("unknown action should use fallback emoji:\n%s", post)
	}
}
