package engine

import (
	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// emit records one protocol event (§6) to the event channel and, if
// configured, the SQLite event log. A full event channel (a stalled
// consumer) drops the event rather than blocking the scheduler — the event
// stream is an observation surface, never part of protocol correctness.
func (e *Engine) emit(dir domain.Direction, env *wire.Envelope, peerAddr, reason string) {
	ev := domain.Event{
		TimestampMs: domain.NowMs(),
		Direction:   dir,
		MsgType:     string(env.MsgType),
		MsgID:       env.MsgID,
		PeerAddr:    peerAddr,
		Reason:      reason,
	}
	if env.MsgType == wire.TypeGossip {
		if g, err := env.Gossip(); err == nil {
			ev.OriginID = g.OriginID
			ev.OriginTimestampMs = g.OriginTimestampMs
		}
	}

	select {
	case e.events <- ev:
	default:
		e.log.Debug("event channel full, dropping event", "msg_type", ev.MsgType)
	}

	if e.eventSink != nil {
		if err := e.eventSink.Record(ev); err != nil {
			e.log.Warn("event log write failed", "error", err)
		}
	}
}

// emitDrop records a dropped inbound datagram under the §7 error taxonomy:
// counted in metrics and surfaced on the event stream, but with no MsgID
// available when the datagram failed to decode at all.
func (e *Engine) emitDrop(msgType, peerAddr, reason string) {
	metrics.MessagesDropped.WithLabelValues(e.nodeID, reason).Inc()

	ev := domain.Event{
		TimestampMs: domain.NowMs(),
		Direction:   domain.DirDrop,
		MsgType:     msgType,
		PeerAddr:    peerAddr,
		Reason:      reason,
	}
	select {
	case e.events <- ev:
	default:
	}
	if e.eventSink != nil {
		if err := e.eventSink.Record(ev); err != nil {
			e.log.Warn("event log write failed", "error", err)
		}
	}
}
