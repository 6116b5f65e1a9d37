// Package dedup implements headline deduplication: canonical
// normalization with content hashing for exact duplicates, and a
// bounded rolling window of summaries with fuzzy matching for
// near-duplicates.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize canonicalizes a headline: lowercase with all punctuation
// and whitespace removed. No stemming or stopword removal. Two
// headlines that differ only by case, punctuation, or spacing
// normalize identically.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Hash returns the lowercase hex SHA-256 of the normalized headline.
// The algorithm and encoding are fixed: persisted hash sets from
// earlier runs must keep matching after restarts and upgrades.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}
