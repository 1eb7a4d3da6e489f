package wire

import (
	"encoding/json"
	"fmt"

	"github.com/gossipmesh/gossipd/internal/domain"
)

// requiredEnvelopeFields are checked for presence (not merely non-zero
// value) before the envelope is trusted, so an explicit 0 ttl is legal but
// an absent ttl is not (§4.1 "required fields are missing").
var requiredEnvelopeFields = []string{
	"version", "msg_id", "msg_type", "sender_id", "sender_addr", "timestamp_ms", "ttl",
}

var requiredPayloadFields = map[Type][]string{
	TypeHello:     {"capabilities"},
	TypeGetPeers:  {"max_peers"},
	TypePeersList: {"peers"},
	TypeGossip:    {"topic", "data", "origin_id", "origin_timestamp_ms"},
	TypePing:      {"ping_id", "seq"},
	TypePong:      {"ping_id", "seq"},
	TypeIHave:     {"ids", "max_ids"},
	TypeIWant:     {"ids"},
}

// Decode parses one UDP datagram into an Envelope. It fails with a wrapped
// domain sentinel: ErrMalformedMessage on bad JSON, ErrMissingField on an
// absent required envelope or payload field (including version and
// msg_type) or an empty msg_id, ErrUnknownVersion on an unknown version,
// ErrUnknownType on an unknown msg_type, and ErrFieldOutOfRange on a
// negative ttl — the §4.1 taxonomy. Unknown additional fields anywhere in
// the envelope or payload are tolerated.
func Decode(data []byte) (*Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	for _, f := range requiredEnvelopeFields {
		if _, ok := raw[f]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", domain.ErrMissingField, f)
		}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}

	if env.Version != Version {
		return nil, fmt.Errorf("%w: version %d", domain.ErrUnknownVersion, env.Version)
	}
	if !validType(env.MsgType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownType, env.MsgType)
	}
	if env.TTL < 0 {
		return nil, fmt.Errorf("%w: ttl %d", domain.ErrFieldOutOfRange, env.TTL)
	}
	if env.MsgID == "" {
		return nil, fmt.Errorf("%w: empty msg_id", domain.ErrMissingField)
	}

	if err := validatePayloadFields(env.MsgType, env.Payload); err != nil {
		return nil, err
	}

	return &env, nil
}

func validatePayloadFields(t Type, payload json.RawMessage) error {
	required := requiredPayloadFields[t]
	if len(required) == 0 {
		return nil
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: %s requires a payload", domain.ErrMissingField, t)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	for _, f := range required {
		if _, ok := raw[f]; !ok {
			return fmt.Errorf("%w: %s payload missing %q", domain.ErrMissingField, t, f)
		}
	}
	return nil
}

// Encode serializes an envelope to its wire form.
func Encode(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// ─── Typed payload accessors ────────────────────────────────────────────────
// The codec never fails on a semantically empty but structurally valid
// payload (e.g. an empty capabilities list); that is the handler's call.

func (e *Envelope) Hello() (*HelloPayload, error) {
	var p HelloPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) GetPeers() (*GetPeersPayload, error) {
	var p GetPeersPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) PeersList() (*PeersListPayload, error) {
	var p PeersListPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) Gossip() (*GossipPayload, error) {
	var p GossipPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) Ping() (*PingPayload, error) {
	var p PingPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) Pong() (*PongPayload, error) {
	var p PongPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) IHave() (*IHavePayload, error) {
	var p IHavePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

func (e *Envelope) IWant() (*IWantPayload, error) {
	var p IWantPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return &p, nil
}

// ─── Builders ────────────────────────────────────────────────────────────
// One constructor per type, mirroring the payload shapes above. Callers set
// MsgID/SenderID/SenderAddr/TimestampMs/TTL on the returned envelope.

func marshalPayload(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// payload types are all json-safe plain structs; a marshal error
		// here would be a programmer error, not a runtime condition.
		panic(fmt.Sprintf("wire: marshal payload: %v", err))
	}
	return b
}

func newEnvelope(t Type, payload any) *Envelope {
	return &Envelope{
		Version: Version,
		MsgType: t,
		Payload: marshalPayload(payload),
	}
}

func NewHello(capabilities []string, pow *PoWProof) *Envelope {
	return newEnvelope(TypeHello, HelloPayload{Capabilities: capabilities, PoW: pow})
}

func NewGetPeers(maxPeers int) *Envelope {
	return newEnvelope(TypeGetPeers, GetPeersPayload{MaxPeers: maxPeers})
}

func NewPeersList(peers []PeerEntry) *Envelope {
	return newEnvelope(TypePeersList, PeersListPayload{Peers: peers})
}

func NewGossip(topic, data, originID string, originTimestampMs int64) *Envelope {
	return newEnvelope(TypeGossip, GossipPayload{
		Topic:             topic,
		Data:              data,
		OriginID:          originID,
		OriginTimestampMs: originTimestampMs,
	})
}

func NewPing(pingID string, seq int) *Envelope {
	return newEnvelope(TypePing, PingPayload{PingID: pingID, Seq: seq})
}

func NewPong(pingID string, seq int) *Envelope {
	return newEnvelope(TypePong, PongPayload{PingID: pingID, Seq: seq})
}

func NewIHave(ids []string, maxIDs int) *Envelope {
	return newEnvelope(TypeIHave, IHavePayload{IDs: ids, MaxIDs: maxIDs})
}

func NewIWant(ids []string) *Envelope {
	return newEnvelope(TypeIWant, IWantPayload{IDs: ids})
}
