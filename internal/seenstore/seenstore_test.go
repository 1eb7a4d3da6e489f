package seenstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/gossipmesh/gossipd/internal/wire"
)

func TestMarkSeen_FirstInsertTrueThenFalse(t *testing.T) {
	s := NewSeenSet(10)
	if !s.MarkSeen("m1") {
		t.Fatal("first MarkSeen must return true")
	}
	if s.MarkSeen("m1") {
		t.Fatal("second MarkSeen of same id must return false")
	}
}

func TestSeenSet_FIFOEviction(t *testing.T) {
	s := NewSeenSet(2)
	s.MarkSeen("a")
	s.MarkSeen("b")
	s.MarkSeen("c") // evicts "a"

	if s.Contains("a") {
		t.Fatal("oldest id should have been evicted")
	}
	if !s.Contains("b") || !s.Contains("c") {
		t.Fatal("expected b and c to remain")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestMessageStore_StoreAndFetch(t *testing.T) {
	m := NewMessageStore(10)
	env := &wire.Envelope{MsgID: "m1", MsgType: wire.TypeGossip}
	m.Store("m1", env)

	got, ok := m.Fetch("m1")
	if !ok || got.MsgID != "m1" {
		t.Fatalf("Fetch returned %+v, ok=%v", got, ok)
	}
	if _, ok := m.Fetch("missing"); ok {
		t.Fatal("expected Fetch of absent id to fail")
	}
}

func TestMessageStore_FIFOEviction(t *testing.T) {
	m := NewMessageStore(2)
	m.Store("a", &wire.Envelope{MsgID: "a"})
	m.Store("b", &wire.Envelope{MsgID: "b"})
	m.Store("c", &wire.Envelope{MsgID: "c"})

	if _, ok := m.Fetch("a"); ok {
		t.Fatal("oldest message should have been evicted")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestMessageStore_RecentIDsMostRecentFirst(t *testing.T) {
	m := NewMessageStore(10)
	for _, id := range []string{"a", "b", "c"} {
		m.Store(id, &wire.Envelope{MsgID: id})
	}
	got := m.RecentIDs(2)
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Fatalf("RecentIDs(2) = %v, want [c b]", got)
	}
}

// TestBoundedMemory_TwentyThousandInserts covers scenario 6 of spec.md §8:
// injecting 20,000 distinct GOSSIP messages leaves exactly 10,000 retained
// in both the seen set and the message store, and they are the 10,000 most
// recently inserted ids.
func TestBoundedMemory_TwentyThousandInserts(t *testing.T) {
	const cap = 10_000
	seen := NewSeenSet(cap)
	store := NewMessageStore(cap)

	for i := 0; i < 20_000; i++ {
		id := fmt.Sprintf("msg-%05d", i)
		seen.MarkSeen(id)
		store.Store(id, &wire.Envelope{MsgID: id})
	}

	if seen.Len() != cap {
		t.Fatalf("seen.Len() = %d, want %d", seen.Len(), cap)
	}
	if store.Len() != cap {
		t.Fatalf("store.Len() = %d, want %d", store.Len(), cap)
	}

	for i := 10_000; i < 20_000; i++ {
		id := fmt.Sprintf("msg-%05d", i)
		if !seen.Contains(id) {
			t.Fatalf("expected %s to still be seen", id)
		}
		if _, ok := store.Fetch(id); !ok {
			t.Fatalf("expected %s to still be stored", id)
		}
	}
	for i := 0; i < 10_000; i++ {
		id := fmt.Sprintf("msg-%05d", i)
		if seen.Contains(id) {
			t.Fatalf("expected %s to have been evicted", id)
		}
	}
}

func TestPendingPings_AddRemove(t *testing.T) {
	p := NewPendingPings()
	now := time.Now()
	p.Add("ping-1", now)
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	if _, ok := p.Remove("ping-1"); !ok {
		t.Fatal("expected Remove to find ping-1")
	}
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after remove", p.Len())
	}
}

func TestPendingPings_PurgeOlderThan(t *testing.T) {
	p := NewPendingPings()
	now := time.Now()
	p.Add("stale", now.Add(-10*time.Second))
	p.Add("fresh", now)

	p.PurgeOlderThan(now, 6*time.Second)
	if _, ok := p.Remove("stale"); ok {
		t.Fatal("expected stale ping to have been purged")
	}
	if _, ok := p.Remove("fresh"); !ok {
		t.Fatal("expected fresh ping to remain")
	}
}
