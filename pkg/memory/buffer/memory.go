package buffer

import "sync"

// Memories is an append-only log of prompt/answer pairs. It is safe for
// concurrent use; the zero value is ready.
type Memories struct {
	mu    sync.RWMutex
	items []Memory
}

type Memory struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (m *Memories) Add(m2 Memory) {
	m.mu.Lock()
	m.items = append(m.items, m2)
	m.mu.Unlock()
}

// Items returns a copy in insertion order.
func (m *Memories) Items() []Memory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Memory, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Memories) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memories) Clear() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}
