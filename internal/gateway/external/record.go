package external

import "sync"

// RecordEntry is one externalized specifier with the URL it resolved to, if
// any. An empty Resolved means the import map had no entry at the time; the
// specifier was externalized regardless.
type RecordEntry struct {
	Specifier string
	Resolved  string
}

// Record is the session's append-only set of externalized modules, kept for
// end-of-session reporting. It starts empty at process start and is never
// cleared afterwards.
type Record struct {
	mu    sync.Mutex
	seen  map[string]int
	order []RecordEntry
}

func NewRecord() *Record {
	return &Record{seen: make(map[string]int)}
}

// Add registers a specifier. A later Add for a known specifier only upgrades
// its resolved URL when one became available.
func (r *Record) Add(specifier, resolved string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.seen[specifier]; ok {
		if resolved != "" && r.order[i].Resolved == "" {
			r.order[i].Resolved = resolved
		}
		return
	}
	r.seen[specifier] = len(r.order)
	r.order = append(r.order, RecordEntry{Specifier: specifier, Resolved: resolved})
}

func (r *Record) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Entries returns a copy in first-seen order.
func (r *Record) Entries() []RecordEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordEntry, len(r.order))
	copy(out, r.order)
	return out
}
