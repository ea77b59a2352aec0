// Package history keeps a bounded undo/redo stack of settings snapshots.
package history

import (
	"time"

	"github.com/cbegin/spatialfx-go/internal/settings"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 50

// Snapshot is an immutable copy of a committed settings change.
type Snapshot struct {
	Timestamp time.Time
	Settings  settings.Settings
	Label     string
}

// History is a cursor over snapshots. It is not safe for concurrent use; the
// engine serializes access under its own lock.
type History struct {
	entries  []Snapshot
	cursor   int
	capacity int
	initial  settings.Settings
	now      func() time.Time
}

// New returns an empty history remembering initial for ResetToInitial.
func New(initial settings.Settings, capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		cursor:   -1,
		capacity: capacity,
		initial:  initial,
		now:      time.Now,
	}
}

// Push discards any redo branch, appends s and moves the cursor to it.
// The oldest entries are evicted once capacity is exceeded.
func (h *History) Push(s settings.Settings, label string) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, Snapshot{Timestamp: h.now(), Settings: s, Label: label})
	h.cursor = len(h.entries) - 1
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
		h.cursor -= over
	}
}

// Undo moves the cursor back one entry and returns that entry's settings.
func (h *History) Undo() (settings.Settings, bool) {
	if !h.CanUndo() {
		return settings.Settings{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Settings, true
}

// Redo moves the cursor forward one entry and returns that entry's settings.
func (h *History) Redo() (settings.Settings, bool) {
	if !h.CanRedo() {
		return settings.Settings{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Settings, true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Current returns the snapshot under the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.entries[h.cursor], true
}

// Reset pushes the defaults of the current entry's mode and returns them.
func (h *History) Reset() settings.Settings {
	mode := h.initial.Mode
	if cur, ok := h.Current(); ok {
		mode = cur.Settings.Mode
	}
	s := settings.Defaults(mode)
	h.Push(s, "reset")
	return s
}

// ResetToInitial pushes the settings captured when the history was created.
func (h *History) ResetToInitial() settings.Settings {
	h.Push(h.initial, "reset to initial")
	return h.initial
}

// Clear drops every entry.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = -1
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Cursor() int { return h.cursor }

func (h *History) Capacity() int { return h.capacity }

// Entries returns a copy of the stored snapshots, oldest first.
func (h *History) Entries() []Snapshot {
	out := make([]Snapshot, len(h.entries))
	copy(out, h.entries)
	return out
}
