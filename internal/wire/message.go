// Package wire implements the message codec (§4.1): the JSON envelope
// format, per-type payloads, and the structural validation that separates a
// MalformedMessage from a semantically-empty-but-valid one.
package wire

import "encoding/json"

// Version is the only protocol version this codec understands (§3).
const Version = 1

// Type identifies one of the eight wire message types (§3, §6).
type Type string

const (
	TypeHello     Type = "HELLO"
	TypeGetPeers  Type = "GET_PEERS"
	TypePeersList Type = "PEERS_LIST"
	TypeGossip    Type = "GOSSIP"
	TypePing      Type = "PING"
	TypePong      Type = "PONG"
	TypeIHave     Type = "IHAVE"
	TypeIWant     Type = "IWANT"
)

func validType(t Type) bool {
	switch t {
	case TypeHello, TypeGetPeers, TypePeersList, TypeGossip, TypePing, TypePong, TypeIHave, TypeIWant:
		return true
	default:
		return false
	}
}

// Envelope is the logical message envelope of §3, encoded as one JSON
// object per UDP datagram. Payload carries the type-specific fields of §6
// and is decoded lazily by the typed accessors in codec.go (Hello, Gossip,
// Ping, ...) once the caller knows msg_type.
type Envelope struct {
	Version     int             `json:"version"`
	MsgID       string          `json:"msg_id"`
	MsgType     Type            `json:"msg_type"`
	SenderID    string          `json:"sender_id"`
	SenderAddr  string          `json:"sender_addr"`
	TimestampMs int64           `json:"timestamp_ms"`
	TTL         int             `json:"ttl"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// ─── Per-type payloads (§6) ─────────────────────────────────────────────────

// PoWProof is the wire form of a proof-of-work solution (§4.10). elapsed_ms
// MUST NOT appear here — that invariant is enforced by this struct simply
// never declaring the field.
type PoWProof struct {
	K     int    `json:"k"`
	Nonce uint64 `json:"nonce"`
	Hash  string `json:"hash"`
}

type HelloPayload struct {
	Capabilities []string  `json:"capabilities"`
	PoW          *PoWProof `json:"pow,omitempty"`
}

type GetPeersPayload struct {
	MaxPeers int `json:"max_peers"`
}

type PeerEntry struct {
	NodeID string `json:"node_id"`
	Addr   string `json:"addr"`
}

type PeersListPayload struct {
	Peers []PeerEntry `json:"peers"`
}

type GossipPayload struct {
	Topic             string `json:"topic"`
	Data              string `json:"data"`
	OriginID          string `json:"origin_id"`
	OriginTimestampMs int64  `json:"origin_timestamp_ms"`
}

type PingPayload struct {
	PingID string `json:"ping_id"`
	Seq    int    `json:"seq"`
}

type PongPayload struct {
	PingID string `json:"ping_id"`
	Seq    int    `json:"seq"`
}

type IHavePayload struct {
	IDs    []string `json:"ids"`
	MaxIDs int      `json:"max_ids"`
}

type IWantPayload struct {
	IDs []string `json:"ids"`
}
