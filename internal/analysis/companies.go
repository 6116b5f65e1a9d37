// Package analysis extracts company mentions and a rough sentiment
// score from feed post text. Matching is pattern-based: a known
// name-to-ticker map plus $TICKER symbols, scored by keyword counts.
package analysis

import (
	"regexp"
	"sort"
	"strings"

	"scryptbot/internal/types"
)

// nameTickers maps lowercase company name variants to tickers.
var nameTickers = map[string]string{
	"apple":           "AAPL",
	"microsoft":       "MSFT",
	"google":          "GOOGL",
	"alphabet":        "GOOGL",
	"amazon":          "AMZN",
	"facebook":        "META",
	"meta":            "META",
	"tesla":           "TSLA",
	"netflix":         "NFLX",
	"nvidia":          "NVDA",
	"amd":             "AMD",
	"intel":           "INTC",
	"coca cola":       "KO",
	"coca-cola":       "KO",
	"mcdonalds":       "MCD",
	"disney":          "DIS",
	"walmart":         "WMT",
	"target":          "TGT",
	"home depot":      "HD",
	"boeing":          "BA",
	"lockheed martin": "LMT",
	"ford":            "F",
	"general motors":  "GM",
	"chevron":         "CVX",
	"exxon":           "XOM",
	"shell":           "SHEL",
	"jpmorgan":        "JPM",
	"bank of america": "BAC",
	"wells fargo":     "WFC",
	"goldman sachs":   "GS",
	"morgan stanley":  "MS",
	"blackrock":       "BLK",
	"visa":            "V",
	"mastercard":      "MA",
	"paypal":          "PYPL",
	"uber":            "UBER",
	"lyft":            "LYFT",
	"airbnb":          "ABNB",
	"zoom":            "ZM",
	"salesforce":      "CRM",
	"oracle":          "ORCL",
	"ibm":             "IBM",
	"cisco":           "CSCO",
	"qualcomm":        "QCOM",
	"verizon":         "VZ",
	"at&t":            "T",
	"comcast":         "CMCSA",
	"boeing co":       "BA",
}

var positiveWords = []string{
	"great", "excellent", "amazing", "fantastic", "wonderful", "outstanding",
	"best", "top", "leading", "successful", "profitable", "growing",
	"love", "support", "approve", "endorse", "recommend",
	"strong", "powerful", "innovative", "revolutionary", "breakthrough",
}

var negativeWords = []string{
	"terrible", "awful", "horrible", "disaster", "failure", "bankrupt",
	"worst", "bottom", "failing", "losing", "declining", "shrinking",
	"hate", "oppose", "reject", "condemn", "boycott",
	"weak", "outdated", "obsolete", "broken",
}

var tickerSymbolPattern = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)

// Finder extracts company mentions from text.
type Finder struct {
	maxCompanies int
	exclude      map[string]struct{}
}

// NewFinder creates a Finder. exclude lists tickers whose bare $TICKER
// mentions are ignored; maxCompanies caps the result (default 5).
func NewFinder(maxCompanies int, exclude []string) *Finder {
	if maxCompanies <= 0 {
		maxCompanies = 5
	}
	f := &Finder{
		maxCompanies: maxCompanies,
		exclude:      make(map[string]struct{}, len(exclude)),
	}
	for _, t := range exclude {
		f.exclude[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return f
}

type match struct {
	company    types.Company
	confidence float64
}

// Find returns the companies mentioned in text with a sentiment score
// in [-1, 1], deduplicated by ticker and capped at the configured
// maximum. Explicit $TICKER mentions win over name matches.
func (f *Finder) Find(text string) []types.Company {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	sentiment := Sentiment(text)

	var matches []match
	for name, ticker := range nameTickers {
		if strings.Contains(lower, name) {
			matches = append(matches, match{
				company:    types.Company{Name: title(name), Ticker: ticker, Sentiment: sentiment},
				confidence: 0.8,
			})
		}
	}

	for _, m := range tickerSymbolPattern.FindAllStringSubmatch(text, -1) {
		ticker := strings.ToUpper(m[1])
		// Bare $TICKER mentions of excluded tickers are ignored; name
		// matches still surface them so downstream gating can decide.
		if _, skip := f.exclude[ticker]; skip {
			continue
		}
		matches = append(matches, match{
			company:    types.Company{Name: ticker, Ticker: ticker, Sentiment: sentiment},
			confidence: 0.9,
		})
	}

	// Highest confidence wins per ticker; order stays deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].confidence != matches[j].confidence {
			return matches[i].confidence > matches[j].confidence
		}
		return matches[i].company.Ticker < matches[j].company.Ticker
	})

	seen := make(map[string]struct{})
	out := make([]types.Company, 0, f.maxCompanies)
	for _, m := range matches {
		ticker := m.company.Ticker
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		out = append(out, m.company)
		if len(out) == f.maxCompanies {
			break
		}
	}
	return out
}

// Sentiment scores text by keyword counts, returning a value in [-1, 1].
// Zero means no sentiment keywords were found.
func Sentiment(text string) float64 {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	s := float64(pos-neg) / float64(total)
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return s
}

func title(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
