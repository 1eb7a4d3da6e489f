// Package engine implements the gossip node's single-threaded scheduler
// (§5): one goroutine owns the peer table, seen set, message store, pending
// pings, and bootstrap state, driven by a single select loop. No mutex ever
// guards that state — the only other goroutines in a running node are the
// UDP receive loop (internal/udptransport) and the proof-of-work worker
// pool (internal/pow), both of which communicate results back over channels.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/eventlog"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/peertable"
	"github.com/gossipmesh/gossipd/internal/pow"
	"github.com/gossipmesh/gossipd/internal/seenstore"
	"github.com/gossipmesh/gossipd/internal/udptransport"
	"github.com/gossipmesh/gossipd/internal/wire"
)

// bootstrapState is the node's join-sequence phase (§4.9).
type bootstrapState int

const (
	stateIdle bootstrapState = iota
	stateJoining
	stateJoined
	stateStandalone
)

// Engine is one gossip node. Its state is owned by the goroutine running
// Start; Events, Originate and Stop are safe to call from any goroutine
// since they only ever touch channels, never that state.
type Engine struct {
	cfg    domain.Config
	nodeID string
	log    *slog.Logger

	transport *udptransport.Transport
	table     *peertable.Table
	seen      *seenstore.SeenSet
	store     *seenstore.MessageStore
	pending   *seenstore.PendingPings
	powWorker *pow.Worker
	eventSink *eventlog.Sink

	rng *rand.Rand

	bootstrap      bootstrapState
	bootstrapAddr  *net.UDPAddr
	bootstrapTries int

	powResults chan pow.Result
	originate  chan originateRequest
	events     chan domain.Event
	stopped    chan struct{}
}

type originateRequest struct {
	topic string
	data  string
}

// New constructs an Engine bound to transport. nodeID is the node's opaque
// identity (domain.NewNodeID()); cfg has already been layered from file and
// flags by the caller.
func New(cfg domain.Config, nodeID string, transport *udptransport.Transport, log *slog.Logger, eventSink *eventlog.Sink) *Engine {
	e := &Engine{
		cfg:        cfg,
		nodeID:     nodeID,
		log:        log,
		transport:  transport,
		table:      peertable.New(cfg.PeerLimit, rand.New(rand.NewSource(cfg.Seed))),
		seen:       seenstore.NewSeenSet(domain.SeenCap),
		store:      seenstore.NewMessageStore(domain.SeenCap),
		pending:    seenstore.NewPendingPings(),
		powWorker:  pow.NewWorker(2),
		eventSink:  eventSink,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		bootstrap:  stateIdle,
		powResults: make(chan pow.Result, 8),
		originate:  make(chan originateRequest, 32),
		events:     make(chan domain.Event, 256),
		stopped:    make(chan struct{}),
	}
	if cfg.Bootstrap == "" {
		e.bootstrap = stateStandalone
	}
	return e
}

// Events exposes the node's event stream (§6) for an external consumer
// (HTTP handler, test assertions, or a forwarding goroutine into eventSink).
func (e *Engine) Events() <-chan domain.Event { return e.events }

// Originate queues a local GOSSIP message for dissemination (§4.5). Safe to
// call concurrently with Start's scheduler loop.
func (e *Engine) Originate(topic, data string) {
	select {
	case e.originate <- originateRequest{topic: topic, data: data}:
	case <-e.stopped:
	}
}

// Stop requests the scheduler loop to exit. Idempotent.
func (e *Engine) Stop() {
	select {
	case <-e.stopped:
	default:
		close(e.stopped)
	}
}

// Start runs the scheduler loop until ctx is canceled or Stop is called. It
// blocks until the loop exits and returns nil; send and receive errors are
// logged and never end the loop.
func (e *Engine) Start(ctx context.Context) error {
	defer e.powWorker.Stop()
	defer close(e.events)

	livenessTicker := time.NewTicker(e.cfg.PingInterval())
	defer livenessTicker.Stop()

	var pullTicker *time.Ticker
	var pullC <-chan time.Time
	if e.cfg.Mode == domain.ModeHybrid {
		pullTicker = time.NewTicker(e.cfg.PullInterval())
		defer pullTicker.Stop()
		pullC = pullTicker.C
	}

	var bootstrapTimer *time.Timer
	var bootstrapC <-chan time.Time
	if e.bootstrap == stateIdle && e.cfg.Bootstrap != "" {
		e.beginBootstrap()
		if e.bootstrap == stateJoining {
			bootstrapTimer = time.NewTimer(e.bootstrapBackoff())
			bootstrapC = bootstrapTimer.C
		}
	}

	e.log.Info("engine started", "node_id", e.nodeID, "addr", e.transport.LocalAddr().String(), "mode", e.cfg.Mode)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopping: context canceled")
			return nil

		case <-e.stopped:
			e.log.Info("engine stopping: stop requested")
			return nil

		case pkt := <-e.transport.Packets():
			e.handlePacket(pkt)

		case req := <-e.originate:
			e.originateGossip(req.topic, req.data)

		case res := <-e.powResults:
			e.completeBootstrapHello(res)

		case now := <-livenessTicker.C:
			e.runLivenessRound(now)

		case now := <-pullC:
			e.runPullRound(now)

		case <-bootstrapC:
			if e.bootstrap == stateJoining {
				e.retryBootstrap()
				if bootstrapTimer != nil && e.bootstrap == stateJoining {
					bootstrapTimer.Reset(e.bootstrapBackoff())
				}
			}
		}

		e.reportGauges()
	}
}

func (e *Engine) reportGauges() {
	metrics.PeerTableSize.WithLabelValues(e.nodeID).Set(float64(e.table.Len()))
	metrics.SeenSetSize.WithLabelValues(e.nodeID).Set(float64(e.seen.Len()))
	metrics.MessageStoreSize.WithLabelValues(e.nodeID).Set(float64(e.store.Len()))
}

// send encodes env and writes it to addr, counting it in metrics and the
// event stream. Encoding failures are a programmer error (all envelopes are
// built from the wire package's typed constructors) so they are logged, not
// propagated.
func (e *Engine) send(env *wire.Envelope, addr *net.UDPAddr) {
	data, err := wire.Encode(env)
	if err != nil {
		e.log.Error("encode outbound envelope", "error", err, "msg_type", env.MsgType)
		return
	}
	if err := e.transport.Send(addr, data); err != nil {
		e.log.Warn("send failed", "error", err, "addr", addr.String())
		metrics.MessagesDropped.WithLabelValues(e.nodeID, "transport_error").Inc()
		return
	}
	metrics.MessagesSent.WithLabelValues(e.nodeID, string(env.MsgType)).Inc()
	e.emit(domain.DirSent, env, addr.String(), "")
}

func (e *Engine) newEnvelope(env *wire.Envelope, ttl int) *wire.Envelope {
	env.MsgID = domain.NewMsgID()
	env.SenderID = e.nodeID
	env.SenderAddr = e.transport.LocalAddr().String()
	env.TimestampMs = domain.NowMs()
	env.TTL = ttl
	return env
}

func nowTime() time.Time { return time.Now() }

func resolveAddr(addr string) (*net.UDPAddr, error) {
	a, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	return a, nil
}
