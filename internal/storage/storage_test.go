package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProcessedIDsRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ids := map[string]struct{}{"guid-1": {}, "guid-2": {}}
	if err := s.SaveProcessedIDs(ids); err != nil {
		t.Fatalf("SaveProcessedIDs failed: %v", err)
	}

	loaded := s.LoadProcessedIDs()
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 ids, got %d", len(loaded))
	}
	if _, ok := loaded["guid-1"]; !ok {
		t.Error("Missing guid-1 after reload")
	}
}

func TestRecentSummariesPreserveOrder(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	entries := []string{"first", "second", "third"}
	if err := s.SaveRecentSummaries(entries); err != nil {
		t.Fatalf("SaveRecentSummaries failed: %v", err)
	}

	loaded := s.LoadRecentSummaries()
	if len(loaded) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(loaded))
	}
	for i, want := range entries {
		if loaded[i] != want {
			t.Errorf("Entry %d: got %q, want %q", i, loaded[i], want)
		}
	}
}

func TestMissingFilesLoadEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if got := s.LoadHeadlineHashes(); len(got) != 0 {
		t.Errorf("Expected empty hash set, got %d entries", len(got))
	}
	if got := s.LoadRecentSummaries(); len(got) != 0 {
		t.Errorf("Expected empty summaries, got %d entries", len(got))
	}
	if got := s.LoadSymbolCache(); len(got) != 0 {
		t.Errorf("Expected empty symbol cache, got %d entries", len(got))
	}
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "headline_hashes.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.LoadHeadlineHashes(); len(got) != 0 {
		t.Errorf("Expected corrupt file to load as empty, got %d entries", len(got))
	}
}

func TestSymbolCacheRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cache := map[string]string{"AAPL": "NASDAQ:AAPL"}
	if err := s.SaveSymbolCache(cache); err != nil {
		t.Fatal(err)
	}
	loaded := s.LoadSymbolCache()
	if loaded["AAPL"] != "NASDAQ:AAPL" {
		t.Errorf("Expected cached symbol NASDAQ:AAPL, got %q", loaded["AAPL"])
	}
}

func TestStaleTempFileCleanedOnRead(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	tempPath := filepath.Join(dir, "processed_ids.json.tmp")
	if err := os.WriteFile(tempPath, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	_ = s.LoadProcessedIDs()
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Error("Expected stale temp file to be removed on load")
	}
}
