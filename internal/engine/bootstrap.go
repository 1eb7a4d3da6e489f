package engine

import (
	"net"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/pow"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// maxBootstrapTries bounds the JOINING retry loop (§4.9): after this many
// unanswered attempts the node gives up and falls back to STANDALONE rather
// than retrying forever.
const maxBootstrapTries = 5

// bootstrapBackoffUnit is the linear-backoff step (§4.7 step 2): the wait
// after attempt n is bootstrapBackoffUnit * n, giving 0.5, 1.0, 1.5, 2.0, 2.5s
// across the five permitted attempts.
const bootstrapBackoffUnit = 500 * time.Millisecond

// bootstrapBackoff returns the wait for the current attempt number.
func (e *Engine) bootstrapBackoff() time.Duration {
	return time.Duration(e.bootstrapTries) * bootstrapBackoffUnit
}

// beginBootstrap moves the node from IDLE to JOINING and sends the first
// HELLO and GET_PEERS to the configured bootstrap peer (§4.7). A node with no
// bootstrap address configured starts, and stays, STANDALONE.
func (e *Engine) beginBootstrap() {
	if e.cfg.Bootstrap == "" {
		e.bootstrap = stateStandalone
		return
	}
	addr, err := resolveAddr(e.cfg.Bootstrap)
	if err != nil {
		e.log.Error("cannot resolve bootstrap address, starting standalone", "error", err, "bootstrap", e.cfg.Bootstrap)
		e.bootstrap = stateStandalone
		return
	}
	e.bootstrapAddr = addr
	e.bootstrapTries = 1
	e.bootstrap = stateJoining
	e.sendHello(addr)
	e.sendGetPeers(addr)
}

// sendHello either sends an unconditioned HELLO (when admission control is
// off) or submits a proof-of-work search to the worker pool and defers the
// send until that search completes (§4.10, §5 — PoW is the one operation
// that must never run on the scheduler goroutine).
func (e *Engine) sendHello(addr *net.UDPAddr) {
	if e.cfg.PoWK <= 0 {
		env := e.newEnvelope(wire.NewHello(nil, nil), 0)
		e.send(env, addr)
		return
	}
	e.powWorker.Submit(e.nodeID, e.cfg.PoWK, e.powResults)
}

// sendGetPeers asks the bootstrap peer for its peer list (§4.7 step 1).
// GET_PEERS carries no admission proof — only HELLO is PoW-gated — so it is
// always sent immediately, independent of the HELLO's possibly-deferred send.
func (e *Engine) sendGetPeers(addr *net.UDPAddr) {
	env := e.newEnvelope(wire.NewGetPeers(e.cfg.PeerLimit), 0)
	e.send(env, addr)
}

// completeBootstrapHello is the powResults handler: it fires once the
// worker pool finishes a proof-of-work search, and sends the now-admissible
// HELLO. A stale result (bootstrap already finished or abandoned by the
// time the search completes) is discarded.
func (e *Engine) completeBootstrapHello(res pow.Result) {
	if e.bootstrap != stateJoining || e.bootstrapAddr == nil {
		return
	}
	proof := &wire.PoWProof{K: res.Proof.K, Nonce: res.Proof.Nonce, Hash: res.Proof.Hash}
	env := e.newEnvelope(wire.NewHello(nil, proof), 0)
	e.send(env, e.bootstrapAddr)
}

// retryBootstrap fires on the bootstrap backoff timer while still JOINING
// (§4.9). After maxBootstrapTries unanswered attempts the node gives up on
// joining and becomes STANDALONE, instead of retrying indefinitely.
func (e *Engine) retryBootstrap() {
	if e.bootstrap != stateJoining {
		return
	}
	if e.bootstrapTries >= maxBootstrapTries {
		e.log.Warn("bootstrap exhausted retries, falling back to standalone", "attempts", e.bootstrapTries, "error", domain.ErrBootstrapTimeout)
		e.bootstrap = stateStandalone
		return
	}
	e.bootstrapTries++
	e.sendHello(e.bootstrapAddr)
	e.sendGetPeers(e.bootstrapAddr)
}

// onBootstrapPeersList advances JOINING to JOINED the first time any
// PEERS_LIST arrives — proof the bootstrap peer (or any peer reached
// transitively) has acknowledged us (§4.9).
func (e *Engine) onBootstrapPeersList(from *net.UDPAddr) {
	if e.bootstrap == stateJoining {
		e.bootstrap = stateJoined
		e.log.Info("bootstrap complete", "via", from.String(), "peers_known", e.table.Len())
	}
}
