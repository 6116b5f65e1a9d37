package dedup

// Window is a bounded rolling set of recent summaries used for fuzzy
// near-duplicate detection. Insertion order is preserved and eviction
// is deterministic: once capacity is exceeded the oldest entry goes
// first. Not safe for concurrent use; the pipeline owns it and mutates
// it from the single processing goroutine only.
type Window struct {
	capacity int
	entries  []string
	seen     map[string]struct{}
}

// NewWindow creates a rolling window with the given capacity.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 50
	}
	return &Window{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Add appends a summary, evicting the oldest entry if the window is
// full. Exact duplicates of a current entry are ignored.
func (w *Window) Add(summary string) {
	if _, ok := w.seen[summary]; ok {
		return
	}
	w.entries = append(w.entries, summary)
	w.seen[summary] = struct{}{}
	for len(w.entries) > w.capacity {
		oldest := w.entries[0]
		w.entries = w.entries[1:]
		delete(w.seen, oldest)
	}
}

// AnySimilar reports whether any entry's similarity ratio to s exceeds
// the threshold.
func (w *Window) AnySimilar(s string, threshold float64) bool {
	for _, prev := range w.entries {
		if Ratio(s, prev) > threshold {
			return true
		}
	}
	return false
}

// Len returns the number of entries currently held.
func (w *Window) Len() int {
	return len(w.entries)
}

// Snapshot returns the entries oldest-first, for persistence.
func (w *Window) Snapshot() []string {
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// Restore replaces the window contents with entries, oldest-first,
// trimming from the front if there are more than capacity.
func (w *Window) Restore(entries []string) {
	w.entries = nil
	w.seen = make(map[string]struct{}, w.capacity)
	for _, e := range entries {
		w.Add(e)
	}
}
