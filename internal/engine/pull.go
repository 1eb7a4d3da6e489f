package engine

import (
	"net"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// runPullRound fires on every pull_interval tick in hybrid mode (§4.8): it
// advertises the most recently stored message ids to up to fanout sampled
// peers so each can request anything it's missing.
func (e *Engine) runPullRound(now time.Time) {
	ids := e.store.RecentIDs(e.cfg.IHaveMaxIDs)
	if len(ids) == 0 {
		return
	}
	for _, rec := range e.table.Sample(e.cfg.Fanout, nil) {
		addr, err := resolveAddr(rec.Addr)
		if err != nil {
			continue
		}
		env := e.newEnvelope(wire.NewIHave(ids, e.cfg.IHaveMaxIDs), 0)
		e.send(env, addr)
	}
}

// handleIHave replies with an IWANT listing only the ids we haven't seen yet
// (§4.8) — no point asking for messages already in our seen set.
func (e *Engine) handleIHave(env *wire.Envelope, addr *net.UDPAddr) {
	ihave, err := env.IHave()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}

	var wanted []string
	for _, id := range ihave.IDs {
		if !e.seen.Contains(id) {
			wanted = append(wanted, id)
		}
	}
	if len(wanted) == 0 {
		return
	}

	reply := e.newEnvelope(wire.NewIWant(wanted), 0)
	e.send(reply, addr)
}

// handleIWant replies with the stored full GOSSIP envelope for every
// requested id we still hold, each resent directly to the requester with
// ttl=1: it is a point-to-point anti-entropy fetch, not a fresh fan-out, so
// the requester records it but does not forward it any further (its
// decrement yields 0).
func (e *Engine) handleIWant(env *wire.Envelope, addr *net.UDPAddr) {
	iwant, err := env.IWant()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}

	for _, id := range iwant.IDs {
		stored, ok := e.store.Fetch(id)
		if !ok {
			continue
		}
		resend := *stored
		resend.SenderID = e.nodeID
		resend.SenderAddr = e.transport.LocalAddr().String()
		resend.TimestampMs = domain.NowMs()
		resend.TTL = 1
		e.send(&resend, addr)
	}
}
