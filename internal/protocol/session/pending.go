package session

import (
	"sort"
	"sync"
	"time"
)

// PendingQuery links an in-flight query to the caller waiting for it.
type PendingQuery struct {
	MessageID uint64
	// Command is the semantic name the reply must carry.
	Command  string
	SentAt   time.Time
	Deadline time.Time
}

func (p PendingQuery) Expired(now time.Time) bool {
	return !p.Deadline.IsZero() && !now.Before(p.Deadline)
}

// PendingTable stores pending queries by correlation token.
type PendingTable struct {
	mu    sync.RWMutex
	items map[uint64]PendingQuery
}

func NewPendingTable() *PendingTable {
	return &PendingTable{
		items: make(map[uint64]PendingQuery),
	}
}

func (t *PendingTable) Put(item PendingQuery) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[item.MessageID] = item
}

// Take removes and returns the pending query for id.
func (t *PendingTable) Take(id uint64) (PendingQuery, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[id]
	if ok {
		delete(t.items, id)
	}
	return item, ok
}

func (t *PendingTable) Get(id uint64) (PendingQuery, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	return item, ok
}

func (t *PendingTable) Remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, id)
}

func (t *PendingTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Clear drops every pending query and returns them in message id order.
func (t *PendingTable) Clear() []PendingQuery {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.sortedLocked()
	t.items = make(map[uint64]PendingQuery)
	return out
}

func (t *PendingTable) List() []PendingQuery {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedLocked()
}

func (t *PendingTable) sortedLocked() []PendingQuery {
	out := make([]PendingQuery, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MessageID < out[j].MessageID
	})
	return out
}
