package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters_IncrementWithoutPanicking(t *testing.T) {
	MessagesSent.WithLabelValues("node-a", "GOSSIP").Inc()
	MessagesDropped.WithLabelValues("node-a", "malformed").Inc()
	PeerEvictions.WithLabelValues("node-a", "lru").Inc()
	GossipOriginated.WithLabelValues("node-a").Inc()
	PoWSearches.WithLabelValues("node-a", "solved").Inc()
	PingRTT.Observe(0.05)
	PoWSolveSeconds.Observe(0.002)

	if got := testutil.ToFloat64(MessagesSent.WithLabelValues("node-a", "GOSSIP")); got < 1 {
		t.Fatalf("MessagesSent = %v, want >= 1", got)
	}
}

func TestGauges_SetReflectsLastValue(t *testing.T) {
	PeerTableSize.WithLabelValues("node-b").Set(7)
	if got := testutil.ToFloat64(PeerTableSize.WithLabelValues("node-b")); got != 7 {
		t.Fatalf("PeerTableSize = %v, want 7", got)
	}
}
