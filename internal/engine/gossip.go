package engine

import (
	"net"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// originateGossip builds a fresh GOSSIP envelope for a locally-produced
// message (§4.5) and fans it out. The envelope is marked seen and stored
// locally too, so a copy of the same message (same msg_id) gossiped back to
// us is recognized as a duplicate rather than re-forwarded.
func (e *Engine) originateGossip(topic, data string) {
	env := e.newEnvelope(wire.NewGossip(topic, data, e.nodeID, domain.NowMs()), e.cfg.TTL)
	e.seen.MarkSeen(env.MsgID)
	e.store.Store(env.MsgID, env)
	metrics.GossipOriginated.WithLabelValues(e.nodeID).Inc()
	e.fanOut(env, "")
}

// handleGossip applies dedup (§4.5 invariant: a message is processed and
// forwarded at most once per node) before storing and re-forwarding.
func (e *Engine) handleGossip(env *wire.Envelope, from *net.UDPAddr) {
	if e.seen.Contains(env.MsgID) {
		return
	}
	e.seen.MarkSeen(env.MsgID)
	e.store.Store(env.MsgID, env)

	if env.TTL <= 1 {
		return
	}

	forwarded := *env
	forwarded.TTL = env.TTL - 1
	forwarded.SenderID = e.nodeID
	forwarded.SenderAddr = e.transport.LocalAddr().String()
	forwarded.TimestampMs = domain.NowMs()
	metrics.GossipForwarded.WithLabelValues(e.nodeID).Inc()
	e.fanOut(&forwarded, from.String())
}

// fanOut sends env, encoded exactly once, to up to cfg.Fanout peers sampled
// uniformly from the peer table, excluding excludeAddr (typically the
// sender we just received this message from, to avoid an immediate
// bounce-back).
func (e *Engine) fanOut(env *wire.Envelope, excludeAddr string) {
	exclude := map[string]bool{}
	if excludeAddr != "" {
		exclude[excludeAddr] = true
	}
	targets := e.table.Sample(e.cfg.Fanout, exclude)

	data, err := wire.Encode(env)
	if err != nil {
		e.log.Error("encode gossip envelope", "error", err)
		return
	}

	for _, rec := range targets {
		addr, err := resolveAddr(rec.Addr)
		if err != nil {
			continue
		}
		if err := e.transport.Send(addr, data); err != nil {
			e.log.Warn("gossip send failed", "error", err, "addr", rec.Addr)
			metrics.MessagesDropped.WithLabelValues(e.nodeID, "transport_error").Inc()
			continue
		}
		metrics.MessagesSent.WithLabelValues(e.nodeID, string(env.MsgType)).Inc()
		e.emit(domain.DirSent, env, rec.Addr, "")
	}
}
