// Package storage provides file-backed persistence for the bot's
// durable state: the processed source-id set, the posted headline-hash
// set, the recent-summary rolling window, the validated chart-symbol
// cache, and the optional portfolio snapshot.
//
// Each collection lives in its own JSON file under the data directory.
// Writes go to a temp file first and are renamed into place so a crash
// never leaves a half-written file. Missing or corrupt files load as
// empty state rather than failing: durability here is best effort and
// a load failure must not stop the bot.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store manages the state files under one data directory. It is used
// from the single processing goroutine only; the pipeline owns all
// mutation.
type Store struct {
	dir string
}

// File names are part of the persisted-state compatibility surface.
const (
	processedFile   = "processed_ids.json"
	hashesFile      = "headline_hashes.json"
	summariesFile   = "recent_summaries.json"
	symbolCacheFile = "chart_symbol_cache.json"
	portfolioFile   = "portfolio.json"
)

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "scryptbot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// write marshals v and atomically replaces the named file.
func (s *Store) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := s.path(name)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", name, err)
	}
	return nil
}

// read unmarshals the named file into v. A missing or unreadable file
// leaves v untouched and returns false.
func (s *Store) read(name string, v any) bool {
	path := s.path(name)

	// Clean up any stale temp file from a previous crash
	if _, err := os.Stat(path + ".tmp"); err == nil {
		_ = os.Remove(path + ".tmp")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// LoadProcessedIDs returns the persisted processed source-id set.
func (s *Store) LoadProcessedIDs() map[string]struct{} {
	return s.loadSet(processedFile)
}

// SaveProcessedIDs persists the processed source-id set.
func (s *Store) SaveProcessedIDs(ids map[string]struct{}) error {
	return s.saveSet(processedFile, ids)
}

// LoadHeadlineHashes returns the persisted posted-headline hash set.
func (s *Store) LoadHeadlineHashes() map[string]struct{} {
	return s.loadSet(hashesFile)
}

// SaveHeadlineHashes persists the posted-headline hash set.
func (s *Store) SaveHeadlineHashes(hashes map[string]struct{}) error {
	return s.saveSet(hashesFile, hashes)
}

// LoadRecentSummaries returns the persisted summary window, oldest
// first. Order matters: it drives FIFO eviction after a restart.
func (s *Store) LoadRecentSummaries() []string {
	var entries []string
	s.read(summariesFile, &entries)
	return entries
}

// SaveRecentSummaries persists the summary window, oldest first.
func (s *Store) SaveRecentSummaries(entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	return s.write(summariesFile, entries)
}

// LoadSymbolCache returns the persisted ticker -> validated chart
// symbol mapping.
func (s *Store) LoadSymbolCache() map[string]string {
	cache := make(map[string]string)
	s.read(symbolCacheFile, &cache)
	if cache == nil {
		cache = make(map[string]string)
	}
	return cache
}

// SaveSymbolCache persists the chart symbol cache.
func (s *Store) SaveSymbolCache(cache map[string]string) error {
	return s.write(symbolCacheFile, cache)
}

// LoadPortfolio unmarshals the persisted portfolio snapshot into v,
// reporting whether a snapshot was present.
func (s *Store) LoadPortfolio(v any) bool {
	return s.read(portfolioFile, v)
}

// SavePortfolio persists the portfolio snapshot.
func (s *Store) SavePortfolio(v any) error {
	return s.write(portfolioFile, v)
}

func (s *Store) loadSet(name string) map[string]struct{} {
	var list []string
	s.read(name, &list)
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}

func (s *Store) saveSet(name string, set map[string]struct{}) error {
	list := make([]string, 0, len(set))
	for v := range set {
		list = append(list, v)
	}
	return s.write(name, list)
}
