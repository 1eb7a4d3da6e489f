// Package pow implements the §4.10 admission puzzle: a linear nonce search
// for a SHA-256 hash with k leading hex zeros, and the validation a receiver
// runs against an incoming HELLO's proof.
//
// Puzzle search is the protocol's one CPU-bound operation (§5 "Off-scheduler
// work") and must never run on the scheduler goroutine — Worker offloads it
// to a small pool so PING timers and inbound datagrams keep being serviced
// while a join is in flight.
package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Proof is the solved puzzle: the nonce, the difficulty it was solved at,
// and the resulting hash. elapsed_ms deliberately has no field here — it
// must never reach the wire (§4.10).
type Proof struct {
	K     int
	Nonce uint64
	Hash  string
}

// input builds the exact byte sequence hashed for a puzzle: node_id + ":" +
// decimal(nonce), ASCII. This concrete form is fixed by §4.10 so that
// proofs are reproducible across implementations.
func input(nodeID string, nonce uint64) []byte {
	var b strings.Builder
	b.WriteString(nodeID)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(nonce, 10))
	return []byte(b.String())
}

func hashHex(nodeID string, nonce uint64) string {
	sum := sha256.Sum256(input(nodeID, nonce))
	return hex.EncodeToString(sum[:])
}

func hasLeadingZeros(hash string, k int) bool {
	if k <= 0 {
		return true
	}
	if len(hash) < k {
		return false
	}
	for i := 0; i < k; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// Compute performs the linear nonce scan of §4.10 and returns the first
// solution found. Inside the engine it runs only on a Worker goroutine,
// never on the scheduler; the pow-bench command calls it directly.
func Compute(nodeID string, k int) Proof {
	for nonce := uint64(0); ; nonce++ {
		hash := hashHex(nodeID, nonce)
		if hasLeadingZeros(hash, k) {
			return Proof{K: k, Nonce: nonce, Hash: hash}
		}
	}
}

// Validate recomputes SHA-256(sender_id ":" nonce) and checks it against the
// claimed hash and the leading-zero condition for the configured difficulty
// (§4.10 steps 2–3). The caller is responsible for step 1 (rejecting a
// HELLO with no proof at all) since that depends on wire decoding.
func Validate(nodeID string, proof Proof, requiredK int) bool {
	if proof.K < requiredK {
		return false
	}
	want := hashHex(nodeID, proof.Nonce)
	return want == proof.Hash && hasLeadingZeros(proof.Hash, proof.K)
}
