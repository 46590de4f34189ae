package engine

import "time"

type HistoryEntry struct {
	Move     Point         `json:"move"`
	Color    Cell          `json:"color"`
	Captured []Point       `json:"captured,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
	IsEngine bool          `json:"is_engine"`
	Depth    int           `json:"depth,omitempty"`
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h MoveHistory) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}
