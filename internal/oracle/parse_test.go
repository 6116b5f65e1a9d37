package oracle

import (
	"errors"
	"testing"
)

func TestParseJudgmentValid(t *testing.T) {
	content := `{"summary":"Apple reports record profits","sentiment":"Positive","instrument":"AAPL","action":" BUY ","rationale":"Strong earnings","expected_impact":"+3%"}`
	j, err := ParseJudgment(content)
	if err != nil {
		t.Fatalf("Expected valid judgment, got %v", err)
	}
	if j.Sentiment != "positive" {
		t.Errorf("Expected sentiment normalized to lowercase, got %q", j.Sentiment)
	}
	if j.Action != "buy" {
		t.Errorf("Expected action lowercased and trimmed, got %q", j.Action)
	}
	if j.Instrument != "AAPL" {
		t.Errorf("Expected instrument AAPL, got %q", j.Instrument)
	}
}

func TestParseJudgmentWrappedInProse(t *testing.T) {
	content := "Here is the analysis:\n```json\n{\"summary\":\"Oil spikes\",\"sentiment\":\"negative\",\"instrument\":\"USO\",\"action\":\"sell\",\"rationale\":\"Supply shock\",\"expected_impact\":\"-2%\"}\n```"
	j, err := ParseJudgment(content)
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if j.Instrument != "USO" {
		t.Errorf("Expected USO, got %q", j.Instrument)
	}
}

func TestParseJudgmentRejectsGarbage(t *testing.T) {
	for _, content := range []string{"", "not json at all", "{broken"} {
		_, err := ParseJudgment(content)
		if err == nil {
			t.Errorf("Expected parse error for %q", content)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Expected *ParseError, got %T", err)
		}
	}
}

func TestParseJudgmentRequiresSummary(t *testing.T) {
	_, err := ParseJudgment(`{"sentiment":"positive","action":"buy"}`)
	if err == nil {
		t.Fatal("Expected rejection of judgment without summary")
	}
}

func TestParseJudgmentClipsRationale(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "rationale "
	}
	j, err := ParseJudgment(`{"summary":"s","rationale":"` + long + `"}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(j.Rationale) > 100 {
		t.Errorf("Expected rationale clipped to 100 chars, got %d", len(j.Rationale))
	}
}
