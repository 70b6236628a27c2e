package state

import "sync"

// History is a linear list of EditState snapshots with a cursor.
// The cursor is -1 while empty.
type History struct {
	snapshots []EditState
	index     int
	maxDepth  int
	mu        sync.RWMutex
}

// NewHistory creates an empty history. A maxDepth <= 0 means unbounded.
func NewHistory(maxDepth int) *History {
	return &History{index: -1, maxDepth: maxDepth}
}

// Apply drops every snapshot past the cursor, appends s and moves onto it.
func (h *History) Apply(s EditState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots[:h.index+1], s)
	h.index = len(h.snapshots) - 1

	if h.maxDepth > 0 && len(h.snapshots) > h.maxDepth {
		drop := len(h.snapshots) - h.maxDepth
		h.snapshots = append([]EditState(nil), h.snapshots[drop:]...)
		h.index -= drop
	}
}

// Undo steps back one snapshot. ok is false when already at the oldest one.
func (h *History) Undo() (s EditState, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index <= 0 {
		return EditState{}, false
	}
	h.index--
	return h.snapshots[h.index], true
}

// Redo steps forward one snapshot. ok is false at the newest one.
func (h *History) Redo() (s EditState, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= len(h.snapshots)-1 {
		return EditState{}, false
	}
	h.index++
	return h.snapshots[h.index], true
}

// Current returns the snapshot under the cursor.
func (h *History) Current() (EditState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.index < 0 {
		return EditState{}, false
	}
	return h.snapshots[h.index], true
}

func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index > 0
}

func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index < len(h.snapshots)-1
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}

func (h *History) Index() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// Clear empties the history and resets the cursor to -1.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = nil
	h.index = -1
}
