package engine

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/udptransport"
	"github.com/gossipmesh/gossipd/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTestEngine wires up a node on a random loopback UDP port and starts
// its scheduler loop in the background. The returned cancel func stops it.
func startTestEngine(t *testing.T, cfg domain.Config) (*Engine, context.CancelFunc) {
	t.Helper()
	transport, err := udptransport.Listen(0, testLogger())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	eng := New(cfg, domain.NewNodeID(), transport, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = eng.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		transport.Close()
	})
	return eng, cancel
}

func fastConfig(bootstrap string) domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Bootstrap = bootstrap
	cfg.PingIntervalS = 0.05
	cfg.PeerTimeoutS = 0.5
	cfg.Seed = 7
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before timeout")
	}
}

func TestBootstrap_JoinerLearnsSeedAndBecomesJoined(t *testing.T) {
	seed, _ := startTestEngine(t, fastConfig(""))
	joiner, _ := startTestEngine(t, fastConfig(seed.transport.LocalAddr().String()))

	waitFor(t, 2*time.Second, func() bool {
		return joiner.bootstrap == stateJoined
	})
	waitFor(t, 2*time.Second, func() bool {
		return joiner.table.Len() >= 1
	})
}

func TestBootstrap_NoAddressStartsStandalone(t *testing.T) {
	solo, _ := startTestEngine(t, fastConfig(""))
	waitFor(t, time.Second, func() bool {
		return solo.bootstrap == stateStandalone
	})
}

func TestGossip_PushDisseminatesThroughRelay(t *testing.T) {
	hub, _ := startTestEngine(t, fastConfig(""))
	left, _ := startTestEngine(t, fastConfig(hub.transport.LocalAddr().String()))
	right, _ := startTestEngine(t, fastConfig(hub.transport.LocalAddr().String()))

	waitFor(t, 2*time.Second, func() bool { return left.bootstrap == stateJoined })
	waitFor(t, 2*time.Second, func() bool { return right.bootstrap == stateJoined })
	// give the hub time to learn both peers from their HELLOs.
	waitFor(t, 2*time.Second, func() bool { return hub.table.Len() >= 2 })

	left.Originate("weather", "sunny")

	waitFor(t, 2*time.Second, func() bool { return right.seen.Len() >= 1 })
}

func TestPull_HybridReconciliationFetchesMissingMessage(t *testing.T) {
	cfgA := fastConfig("")
	cfgA.Mode = domain.ModeHybrid
	cfgA.PullIntervalS = 0.05
	a, _ := startTestEngine(t, cfgA)

	cfgB := fastConfig("")
	cfgB.Mode = domain.ModeHybrid
	cfgB.PullIntervalS = 0.05
	b, _ := startTestEngine(t, cfgB)

	// A originates while it knows no peers, so the push fan-out reaches
	// nobody; B only learns of A afterwards, simulating a peer that missed
	// the original push round and must recover it via pull (§4.8).
	a.Originate("news", "A has this, B does not")
	waitFor(t, time.Second, func() bool { return a.store.Len() >= 1 })

	a.table.Touch(b.transport.LocalAddr().String(), b.nodeID, time.Now())
	b.table.Touch(a.transport.LocalAddr().String(), a.nodeID, time.Now())

	waitFor(t, 2*time.Second, func() bool { return b.seen.Len() >= 1 })
}

func TestAdmission_RejectsHelloWithoutProofOfWork(t *testing.T) {
	cfg := fastConfig("")
	cfg.PoWK = 2
	gate, _ := startTestEngine(t, cfg)

	conn, err := net.DialUDP("udp4", nil, gate.transport.LocalAddr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := wire.NewHello(nil, nil)
	hello.MsgID = domain.NewMsgID()
	hello.SenderID = domain.NewNodeID()
	hello.SenderAddr = conn.LocalAddr().String()
	hello.TimestampMs = domain.NowMs()
	hello.TTL = 0

	data, err := wire.Encode(hello)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 2048)
	_, _, err = conn.ReadFromUDP(buf)
	if err == nil {
		t.Fatal("expected no PEERS_LIST reply to a HELLO missing proof of work")
	}
}
