package engine

import (
	"errors"
	"net"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/pow"
	"github.com/gossipmesh/gossipd/internal/udptransport"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// handlePacket decodes one inbound datagram and routes it to a handler
// (§4.4). Decode failures and admission failures are dropped and counted,
// never propagated — a single malformed datagram must never disturb the
// scheduler loop (§7).
func (e *Engine) handlePacket(pkt udptransport.Packet) {
	env, err := wire.Decode(pkt.Data)
	if err != nil {
		e.log.Debug("dropping malformed datagram", "error", err, "addr", pkt.Addr.String())
		e.emitDrop("UNKNOWN", pkt.Addr.String(), classifyDecodeError(err))
		return
	}

	metrics.MessagesReceived.WithLabelValues(e.nodeID, string(env.MsgType)).Inc()
	e.emit(domain.DirRecv, env, pkt.Addr.String(), "")

	// HELLO is the only message gated by admission control (§4.10); every
	// other message type only reaches a node already past that gate.
	if env.MsgType == wire.TypeHello {
		e.handleHello(env, pkt.Addr)
		return
	}

	// Any other datagram from an address we haven't met yet still counts as
	// contact: update last_seen, but don't learn a node_id from it beyond
	// what the envelope already claims (§4.3).
	e.table.Touch(pkt.Addr.String(), env.SenderID, nowTime())

	switch env.MsgType {
	case wire.TypeGetPeers:
		e.handleGetPeers(env, pkt.Addr)
	case wire.TypePeersList:
		e.handlePeersList(env, pkt.Addr)
	case wire.TypeGossip:
		e.handleGossip(env, pkt.Addr)
	case wire.TypePing:
		e.handlePing(env, pkt.Addr)
	case wire.TypePong:
		e.handlePong(env, pkt.Addr)
	case wire.TypeIHave:
		e.handleIHave(env, pkt.Addr)
	case wire.TypeIWant:
		e.handleIWant(env, pkt.Addr)
	default:
		e.emitDrop(string(env.MsgType), pkt.Addr.String(), "unknown_type")
	}
}

func classifyDecodeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownVersion):
		return "unknown_version"
	case errors.Is(err, domain.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domain.ErrFieldOutOfRange):
		return "field_out_of_range"
	default:
		return "malformed"
	}
}

func (e *Engine) handleHello(env *wire.Envelope, addr *net.UDPAddr) {
	hello, err := env.Hello()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}

	if e.cfg.PoWK > 0 {
		if hello.PoW == nil {
			metrics.PoWSearches.WithLabelValues(e.nodeID, "rejected").Inc()
			e.emitDrop(string(env.MsgType), addr.String(), "pow_missing")
			return
		}
		ok := pow.Validate(env.SenderID, pow.Proof{K: hello.PoW.K, Nonce: hello.PoW.Nonce, Hash: hello.PoW.Hash}, e.cfg.PoWK)
		if !ok {
			metrics.PoWSearches.WithLabelValues(e.nodeID, "rejected").Inc()
			e.emitDrop(string(env.MsgType), addr.String(), "pow_insufficient")
			return
		}
		metrics.PoWSearches.WithLabelValues(e.nodeID, "solved").Inc()
	}

	e.table.Touch(addr.String(), env.SenderID, nowTime())

	reply := e.newEnvelope(wire.NewPeersList(peerEntries(e.table.Snapshot(e.cfg.PeerLimit))), 0)
	e.send(reply, addr)
}

func (e *Engine) handleGetPeers(env *wire.Envelope, addr *net.UDPAddr) {
	req, err := env.GetPeers()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}
	max := req.MaxPeers
	if max <= 0 {
		max = e.cfg.PeerLimit
	}
	reply := e.newEnvelope(wire.NewPeersList(peerEntries(e.table.Snapshot(max))), 0)
	e.send(reply, addr)
}

// peerEntries adapts the peer table's domain.PeerInfo snapshot to the
// wire package's PeerEntry shape.
func peerEntries(peers []domain.PeerInfo) []wire.PeerEntry {
	out := make([]wire.PeerEntry, len(peers))
	for i, p := range peers {
		out[i] = wire.PeerEntry{NodeID: p.NodeID, Addr: p.Addr}
	}
	return out
}

func (e *Engine) handlePeersList(env *wire.Envelope, addr *net.UDPAddr) {
	list, err := env.PeersList()
	if err != nil {
		e.emitDrop(string(env.MsgType), addr.String(), "malformed")
		return
	}
	for _, p := range list.Peers {
		if p.Addr == e.transport.LocalAddr().String() {
			continue
		}
		if _, err := resolveAddr(p.Addr); err != nil {
			continue
		}
		e.table.Touch(p.Addr, p.NodeID, nowTime())
	}
	e.onBootstrapPeersList(addr)
}
