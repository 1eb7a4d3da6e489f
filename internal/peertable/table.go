// Package peertable implements the bounded membership set of §4.2: LRU-style
// eviction on overflow, liveness-driven expiry, and the seeded random
// sampling that drives gossip fanout.
//
// Table is not safe for concurrent use. It is owned exclusively by the
// engine's single-threaded scheduler (§5) — the receive loop hands
// datagrams to the scheduler over a channel instead of touching the table
// directly, so no mutex is needed here.
package peertable

import (
	"math/rand"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
)

// Record is one peer-table entry (§3 "Peer record").
type Record struct {
	NodeID   string
	Addr     string
	LastSeen time.Time
}

// Table is the bounded, address-keyed peer set.
type Table struct {
	limit   int
	rng     *rand.Rand
	records map[string]*Record
}

// New creates a Table capped at limit entries, using rng for sampling.
// Passing the node's seeded RNG (§3 config "seed") makes the shuffle
// reproducible for a given candidate order. Ties in last_seen on eviction
// are broken by map iteration order, not by rng.
func New(limit int, rng *rand.Rand) *Table {
	return &Table{
		limit:   limit,
		rng:     rng,
		records: make(map[string]*Record),
	}
}

// Len returns the current number of tracked peers.
func (t *Table) Len() int { return len(t.records) }

// Touch inserts or refreshes a peer's last_seen (§4.2). nodeID may be empty
// when the sender is not yet known. If inserting a brand-new address would
// exceed the configured limit, the entry with the smallest last_seen is
// evicted first.
func (t *Table) Touch(addr, nodeID string, now time.Time) {
	if rec, ok := t.records[addr]; ok {
		rec.LastSeen = now
		if nodeID != "" {
			rec.NodeID = nodeID
		}
		return
	}

	if len(t.records) >= t.limit && t.limit > 0 {
		if victim := t.lruAddr(); victim != "" && victim != addr {
			delete(t.records, victim)
		}
	}

	t.records[addr] = &Record{NodeID: nodeID, Addr: addr, LastSeen: now}
}

// lruAddr returns the address with the smallest last_seen, or "" if empty.
func (t *Table) lruAddr() string {
	var victim string
	var oldest time.Time
	first := true
	for addr, rec := range t.records {
		if first || rec.LastSeen.Before(oldest) {
			victim = addr
			oldest = rec.LastSeen
			first = false
		}
	}
	return victim
}

// Remove deletes a peer by address. Idempotent.
func (t *Table) Remove(addr string) {
	delete(t.records, addr)
}

// Get returns the record for addr, if any.
func (t *Table) Get(addr string) (Record, bool) {
	rec, ok := t.records[addr]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Sample returns up to k peers chosen uniformly at random without
// replacement, excluding any address present in exclude (§4.2). This
// randomness is the sole driver of dissemination redundancy — never replace
// it with a deterministic order (§4.2 note).
func (t *Table) Sample(k int, exclude map[string]bool) []Record {
	candidates := make([]Record, 0, len(t.records))
	for addr, rec := range t.records {
		if exclude != nil && exclude[addr] {
			continue
		}
		candidates = append(candidates, *rec)
	}
	if k >= len(candidates) {
		t.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		return candidates
	}

	t.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:k]
}

// Snapshot returns up to max (node_id, addr) pairs for PEERS_LIST replies.
func (t *Table) Snapshot(max int) []domain.PeerInfo {
	out := make([]domain.PeerInfo, 0, max)
	for _, rec := range t.records {
		if len(out) >= max {
			break
		}
		out = append(out, domain.PeerInfo{NodeID: rec.NodeID, Addr: rec.Addr})
	}
	return out
}

// Expire removes peers silent for longer than timeout (§4.2, §4.9 ALIVE →
// EVICTED) and returns the addresses removed.
func (t *Table) Expire(now time.Time, timeout time.Duration) []string {
	var evicted []string
	for addr, rec := range t.records {
		if now.Sub(rec.LastSeen) > timeout {
			evicted = append(evicted, addr)
		}
	}
	for _, addr := range evicted {
		delete(t.records, addr)
	}
	return evicted
}
