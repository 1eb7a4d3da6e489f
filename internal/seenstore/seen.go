// Package seenstore implements the §4.3 dedup set and message retention
// cache: both are ordered-by-insertion mappings capped at
// domain.SeenCap, evicting the oldest entry on overflow (FIFO).
//
// Like peertable.Table, neither type here is safe for concurrent use — both
// are owned by the engine's single-threaded scheduler (§5).
package seenstore

import "container/list"

// SeenSet is the ordered dedup set of §3 "Seen set". Membership test is its
// sole read; insertion order is the only thing that matters for eviction.
type SeenSet struct {
	cap   int
	order *list.List
	index map[string]*list.Element
}

// NewSeenSet creates a SeenSet capped at capacity entries.
func NewSeenSet(capacity int) *SeenSet {
	return &SeenSet{
		cap:   capacity,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Contains reports whether id has been marked seen and not yet evicted.
func (s *SeenSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// MarkSeen inserts id and reports true if it was newly inserted, false if
// already present (§4.3). On overflow the oldest id is evicted.
func (s *SeenSet) MarkSeen(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	el := s.order.PushBack(id)
	s.index[id] = el

	if s.cap > 0 && s.order.Len() > s.cap {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(string))
	}
	return true
}

// Len returns the number of currently retained ids.
func (s *SeenSet) Len() int { return s.order.Len() }
