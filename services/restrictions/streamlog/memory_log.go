package streamlog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLog is an in-memory Log, used by tests that exercise publisher and
// consumer logic without depending on a real backing store's stream
// support. It implements the same consumer-group semantics: entries are
// delivered once per group until acknowledged. ReadGroup does not block:
// it returns at once, ignoring block, when nothing new is available.
type MemoryLog struct {
	mu       sync.Mutex
	seq      int
	entries  map[string][]Entry            // stream -> ordered entries
	groups   map[string]map[string]struct{} // stream -> group -> exists
	cursor   map[string]map[string]int      // stream -> group -> next unread index
	pending  map[string]map[string]Entry    // stream -> id -> entry (across all groups)
}

// NewMemoryLog returns an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		entries: make(map[string][]Entry),
		groups:  make(map[string]map[string]struct{}),
		cursor:  make(map[string]map[string]int),
		pending: make(map[string]map[string]Entry),
	}
}

func (m *MemoryLog) CreateGroup(ctx context.Context, stream, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groups[stream] == nil {
		m.groups[stream] = make(map[string]struct{})
	}
	if m.cursor[stream] == nil {
		m.cursor[stream] = make(map[string]int)
	}
	if _, exists := m.groups[stream][group]; exists {
		return nil
	}
	m.groups[stream][group] = struct{}{}
	m.cursor[stream][group] = len(m.entries[stream])
	return nil
}

func (m *MemoryLog) Append(ctx context.Context, stream string, fields map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("%d-0", m.seq)
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	m.entries[stream] = append(m.entries[stream], Entry{ID: id, Fields: copied})
	return id, nil
}

func (m *MemoryLog) ReadGroup(ctx context.Context, group, consumer, stream string, count int64, block time.Duration) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.entries[stream]
	start := m.cursor[stream][group]
	if start >= len(all) {
		return nil, nil
	}

	end := start + int(count)
	if end > len(all) {
		end = len(all)
	}
	out := make([]Entry, end-start)
	copy(out, all[start:end])
	m.cursor[stream][group] = end

	if m.pending[stream] == nil {
		m.pending[stream] = make(map[string]Entry)
	}
	for _, e := range out {
		m.pending[stream][e.ID] = e
	}
	return out, nil
}

func (m *MemoryLog) Ack(ctx context.Context, stream, group, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[stream] != nil {
		delete(m.pending[stream], id)
	}
	return nil
}

// PendingCount reports entries delivered but not yet acknowledged, for
// assertions in tests.
func (m *MemoryLog) PendingCount(stream string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[stream])
}
