// Package oracle defines the AI judgment boundary: the prompt sent to
// a language model and the validation that turns its raw output into a
// structured judgment or a parse error. Providers live in the
// subpackages; everything downstream of this boundary sees only a
// validated Judgment or an error, never a half-populated one.
package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"scryptbot/internal/types"
)

// ParseError is the "error judgment" case: the model's output could
// not be validated into a Judgment. Raw carries the offending output
// for logs.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("oracle output rejected: %s", e.Reason)
}

const promptTemplate = `You are a financial news analyst AI. Given the following news headline, analyze it and provide:
- A one-sentence summary
- The overall sentiment (positive, negative, or neutral)
- The most relevant financial instrument (provide the actual ticker symbol, e.g., TSLA, AAPL, SPY, not just 'stock' or 'equity')
- A suggested action (buy, sell, hold, ignore)
- A brief rationale for your suggestion (keep it to a single, concise sentence, max 100 characters)
- Estimate the expected price impact as a percentage (e.g., +2%%, -1%%, 0%%) and include it in your JSON output as expected_impact.

Headline: "%s"

Respond in JSON with keys: summary, sentiment, instrument, action, rationale, expected_impact.`

// BuildPrompt renders the analysis prompt for a headline.
func BuildPrompt(headline string) string {
	return fmt.Sprintf(promptTemplate, headline)
}

// ParseJudgment validates raw model output into a Judgment. Defaulting
// and normalization rules live here, nowhere else: sentiment and
// action are lowercased and trimmed, the rationale is clipped to 100
// characters, and a missing optional field becomes the empty string.
// Output that is not a JSON object or has no summary is rejected.
func ParseJudgment(content string) (types.Judgment, error) {
	t := strings.TrimSpace(content)
	if t == "" {
		return types.Judgment{}, &ParseError{Reason: "empty output"}
	}

	// Models sometimes wrap the object in prose or code fences; take
	// the outermost braces.
	if !strings.HasPrefix(t, "{") {
		start := strings.Index(t, "{")
		end := strings.LastIndex(t, "}")
		if start < 0 || end <= start {
			return types.Judgment{}, &ParseError{Reason: "no JSON object in output", Raw: content}
		}
		t = t[start : end+1]
	}

	var j types.Judgment
	if err := json.Unmarshal([]byte(t), &j); err != nil {
		return types.Judgment{}, &ParseError{Reason: "invalid JSON: " + err.Error(), Raw: content}
	}

	j.Summary = strings.TrimSpace(j.Summary)
	if j.Summary == "" {
		return types.Judgment{}, &ParseError{Reason: "missing summary", Raw: content}
	}

	j.Sentiment = strings.ToLower(strings.TrimSpace(j.Sentiment))
	j.Action = strings.ToLower(strings.TrimSpace(j.Action))
	j.Instrument = strings.TrimSpace(j.Instrument)
	j.Rationale = strings.TrimSpace(j.Rationale)
	if len(j.Rationale) > 100 {
		j.Rationale = j.Rationale[:100]
	}
	j.ExpectedImpact = strings.TrimSpace(j.ExpectedImpact)
	return j, nil
}
