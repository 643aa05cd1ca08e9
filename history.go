package lg

import (
	"encoding/json"
	"time"
)

// HistoryEntry records one operation applied to a layer.
type HistoryEntry struct {
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// History is an append-only per-layer operation log. Entries are never
// edited or reordered; with a positive limit, the log drops its oldest
// entries once the limit is exceeded so long sessions stay bounded.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory creates a history log. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Append records an entry at the end of the log.
func (h *History) Append(e HistoryEntry) {
	h.entries = append(h.entries, e)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the retained entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// MarshalJSON serializes the log as a plain entry array.
func (h *History) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}
