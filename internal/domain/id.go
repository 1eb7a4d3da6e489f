package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newHexID returns 128 random bits rendered as 32 lowercase hex characters.
func newHexID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// NewNodeID generates a fresh node identity (§3 "Node identity"): an opaque
// 128-bit value rendered as 32 hex characters, independent of the node's
// listening address. uuid.New() already produces 128 bits of randomness;
// its RFC-4122 version/variant framing is irrelevant here since node_id is
// opaque, not a parsed UUID, so we just strip the dashes.
func NewNodeID() string { return newHexID() }

// NewMsgID generates a fresh msg_id for an outbound envelope (§3 "msg_id:
// opaque unique identifier, generated once by the originator").
func NewMsgID() string { return newHexID() }

// NewPingID generates a fresh ping_id (§3 "Pending-ping record").
func NewPingID() string { return newHexID() }
