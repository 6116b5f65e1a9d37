package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"scryptbot/internal/types"
)

var mu sync.Mutex

// Entry is one executed paper trade in the daily log.
type Entry struct {
	Time, ID, Ticker, Action string
	Qty                      int
	Price, Value, CashAfter  float64
	Sentiment                float64
	Extra                    map[string]any `json:"extra,omitempty"`
}

// DecisionEntry is one gating outcome in the daily decisions log.
type DecisionEntry struct {
	Time, SourceID, Outcome, SkipReason string
	Instrument, PostID                  string
	Extra                               map[string]any `json:"extra,omitempty"`
}

func logDir() string {
	if v := os.Getenv("SCRYPTBOT_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func decisionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.UTC().Format("2006-01-02")+".txt")
}

func appendLine(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// Append writes one trade record to today's log file.
func Append(rec types.TradeRecord) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e := Entry{
		Time:      now.Format("2006-01-02 15:04:05"),
		ID:        rec.ID,
		Ticker:    rec.Ticker,
		Action:    rec.Action,
		Qty:       rec.Quantity,
		Price:     rec.Price,
		Value:     rec.Value,
		CashAfter: rec.CashAfter,
		Sentiment: rec.Sentiment,
	}
	return appendLine(dailyFilepath(now), e)
}

// AppendDecision writes one gating outcome to today's decisions log.
func AppendDecision(res types.StepResult) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e := DecisionEntry{
		Time:       now.Format("2006-01-02 15:04:05"),
		SourceID:   res.SourceID,
		Outcome:    string(res.Outcome),
		SkipReason: string(res.SkipReason),
		Instrument: res.Instrument,
		PostID:     res.PostID,
	}
	return appendLine(decisionsFilepath(now), e)
}

// CompressOlder gzips log files older than retentionDays and removes
// the originals. A non-positive retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
