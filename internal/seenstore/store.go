package seenstore

import (
	"container/list"

	"github.com/gossipmesh/gossipd/internal/wire"
)

// MessageStore is the §3 "Message store": an ordered mapping from msg_id to
// the full decoded GOSSIP envelope, used to answer IWANT (§4.8). Same
// capacity and FIFO eviction policy as SeenSet. Every id ever stored was
// first marked seen by the caller, so store.keys ⊆ seen.keys holds for as
// long as the two share the same insertion sequence (§8 invariant 3) — the
// gossip engine enforces this by always calling MarkSeen immediately before
// Store for the same id.
type MessageStore struct {
	cap   int
	order *list.List
	index map[string]*list.Element
	byID  map[string]*wire.Envelope
}

// NewMessageStore creates a MessageStore capped at capacity entries.
func NewMessageStore(capacity int) *MessageStore {
	return &MessageStore{
		cap:   capacity,
		order: list.New(),
		index: make(map[string]*list.Element),
		byID:  make(map[string]*wire.Envelope),
	}
}

// Store records the full message, keyed by its msg_id. Re-storing an id
// already present is a no-op on ordering (the id keeps its original
// position) but refreshes the stored envelope.
func (m *MessageStore) Store(id string, env *wire.Envelope) {
	if _, ok := m.index[id]; ok {
		m.byID[id] = env
		return
	}

	el := m.order.PushBack(id)
	m.index[id] = el
	m.byID[id] = env

	if m.cap > 0 && m.order.Len() > m.cap {
		oldest := m.order.Front()
		oldestID := oldest.Value.(string)
		m.order.Remove(oldest)
		delete(m.index, oldestID)
		delete(m.byID, oldestID)
	}
}

// Fetch returns the stored message for id, if still retained.
func (m *MessageStore) Fetch(id string) (*wire.Envelope, bool) {
	env, ok := m.byID[id]
	return env, ok
}

// Len returns the number of currently retained messages.
func (m *MessageStore) Len() int { return m.order.Len() }

// RecentIDs returns up to n of the most recently stored ids, in
// most-recent-first order — used to build IHAVE advertisements (§4.8).
func (m *MessageStore) RecentIDs(n int) []string {
	out := make([]string, 0, n)
	for el := m.order.Back(); el != nil && len(out) < n; el = el.Prev() {
		out = append(out, el.Value.(string))
	}
	return out
}
