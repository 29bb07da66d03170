package router

import "sync"

// History is the session history the client router navigates.
type History interface {
	// Location returns the current path and query.
	Location() string

	// Push appends a new entry and makes it current.
	Push(path string)
}

// MemoryHistory is a History kept in memory, for non-browser hosts and tests.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	index   int
	pushes  int
}

// NewMemoryHistory creates a history positioned at initial.
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{entries: []string{initial}}
}

// Location implements History.
func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push implements History. Forward entries are discarded.
func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], path)
	h.index = len(h.entries) - 1
	h.pushes++
}

// Back moves one entry back. It reports false at the first entry.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves one entry forward. It reports false at the last entry.
func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Pushes returns how many times Push was called.
func (h *MemoryHistory) Pushes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pushes
}
