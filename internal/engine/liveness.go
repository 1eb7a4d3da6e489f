package engine

import (
	"net"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// runLivenessRound fires on every ping_interval tick (§4.6): it expires
// peers that have gone silent past peer_timeout, purges pending pings that
// were never answered, and probes up to fanout randomly sampled peers.
func (e *Engine) runLivenessRound(now time.Time) {
	for _, addr := range e.table.Expire(now, e.cfg.PeerTimeout()) {
		e.log.Debug("peer expired", "addr", addr)
		metrics.PeerEvictions.WithLabelValues(e.nodeID, "timeout").Inc()
	}
	e.pending.PurgeOlderThan(now, e.cfg.PeerTimeout())

	for _, rec := range e.table.Sample(e.cfg.Fanout, nil) {
		addr, err := resolveAddr(rec.Addr)
		if err != nil {
			continue
		}
		pingID := domain.NewPingID()
		e.pending.Add(pingID, now)
		env := e.newEnvelope(wire.NewPing(pingID, 0), 0)
		e.send(env, addr)
	}
}

func (e *Engine) handlePing(env *wire.Envelope, addr *net.UDPAddr) {
	ping, err := env.Ping()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}
	reply := e.newEnvelope(wire.NewPong(ping.PingID, ping.Seq), 0)
	e.send(reply, addr)
}

func (e *Engine) handlePong(env *wire.Envelope, addr *net.UDPAddr) {
	pong, err := env.Pong()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}
	sentAt, ok := e.pending.Remove(pong.PingID)
	if !ok {
		return
	}
	rtt := time.Since(sentAt)
	metrics.PingRTT.Observe(rtt.Seconds())
}
