package seenstore

import "time"

// PendingPings tracks in-flight PING round-trips keyed by ping_id (§3
// "Pending-ping record"). Bounded in practice by peer count ×
// (peer_timeout_s / ping_interval_s) since every tick purges anything older
// than peer_timeout_s (§5 "Resource budgets").
type PendingPings struct {
	sendTime map[string]time.Time
}

// NewPendingPings creates an empty pending-ping table.
func NewPendingPings() *PendingPings {
	return &PendingPings{sendTime: make(map[string]time.Time)}
}

// Add records a newly sent ping.
func (p *PendingPings) Add(pingID string, now time.Time) {
	p.sendTime[pingID] = now
}

// Remove deletes a ping, returning whether it was present (used on PONG).
func (p *PendingPings) Remove(pingID string) (time.Time, bool) {
	t, ok := p.sendTime[pingID]
	if ok {
		delete(p.sendTime, pingID)
	}
	return t, ok
}

// PurgeOlderThan removes every ping sent more than timeout ago. Purging here
// is purely defensive — the eviction decision for a peer is driven by
// last_seen, never by an outstanding ping (§3).
func (p *PendingPings) PurgeOlderThan(now time.Time, timeout time.Duration) {
	for id, sentAt := range p.sendTime {
		if now.Sub(sentAt) > timeout {
			delete(p.sendTime, id)
		}
	}
}

// Len returns the number of outstanding pings.
func (p *PendingPings) Len() int { return len(p.sendTime) }
