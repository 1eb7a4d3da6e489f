package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gossipmesh/gossipd/internal/config"
	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/engine"
	"github.com/gossipmesh/gossipd/internal/eventlog"
	"github.com/gossipmesh/gossipd/internal/metrics"
	"github.com/gossipmesh/gossipd/internal/udptransport"
)

func init() {
	rootCmd.AddCommand(runCmd)

	def := domain.DefaultConfig()
	flags := runCmd.Flags()
	flags.Int("port", def.Port, "UDP port to listen on")
	flags.String("bootstrap", def.Bootstrap, "address of an existing node to join through (host:port)")
	flags.Int("fanout", def.Fanout, "number of peers to forward each gossip message to")
	flags.Int("ttl", def.TTL, "hop budget for originated gossip messages")
	flags.Int("peer-limit", def.PeerLimit, "maximum number of tracked peers")
	flags.Float64("ping-interval", def.PingIntervalS, "seconds between liveness probes")
	flags.Float64("peer-timeout", def.PeerTimeoutS, "seconds of silence before a peer is evicted")
	flags.Int64("seed", def.Seed, "seed for the peer-sampling RNG")
	flags.String("mode", string(def.Mode), "dissemination mode: push or hybrid")
	flags.Float64("pull-interval", def.PullIntervalS, "seconds between pull (IHAVE) rounds in hybrid mode")
	flags.Int("ihave-max-ids", def.IHaveMaxIDs, "maximum ids advertised per IHAVE")
	flags.Int("pow-k", def.PoWK, "required proof-of-work difficulty for inbound HELLOs (0 disables)")

	flags.String("config", "", "path to a TOML config file")
	flags.String("metrics-addr", "", "address to serve /health and /metrics on (empty disables)")
	flags.String("event-log", "", "path to a SQLite file to append the event stream to (empty disables)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a gossip node",
	Long: `Start a gossip node: bind a UDP socket, optionally join an existing
network through --bootstrap, and read lines from stdin as messages to
originate ("topic data" becomes one GOSSIP per line, using the rest of the
line verbatim as data after the first space).`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	overlayFlags(cmd, &cfg)

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	eventLogPath, _ := cmd.Flags().GetString("event-log")

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	nodeID := domain.NewNodeID()

	transport, err := udptransport.Listen(cfg.Port, log)
	if err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	defer transport.Close()

	var sink *eventlog.Sink
	if eventLogPath != "" {
		sink, err = eventlog.Open(eventLogPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer sink.Close()
	}

	eng := engine.New(cfg, nodeID, transport, log, sink)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Server()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	}

	go stdinOriginateLoop(ctx, eng, log)

	log.Info("gossipd starting", "node_id", nodeID, "port", cfg.Port, "bootstrap", cfg.Bootstrap, "mode", cfg.Mode)
	return eng.Start(ctx)
}

// stdinOriginateLoop is the §5 stdin-input suspension point: each line read
// from stdin becomes one originated GOSSIP, "topic data" split on the first
// space (a bare line with no space uses topic "stdin" and the whole line as
// data).
func stdinOriginateLoop(ctx context.Context, eng *engine.Engine, log *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		topic, data := "stdin", line
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			topic, data = line[:idx], line[idx+1:]
		}
		eng.Originate(topic, data)
	}
	if err := scanner.Err(); err != nil {
		log.Warn("stdin read error", "error", err)
	}
}

// overlayFlags applies every explicitly-set flag on top of cfg, so flags win
// over the TOML file which in turn already won over domain.DefaultConfig().
func overlayFlags(cmd *cobra.Command, cfg *domain.Config) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("bootstrap") {
		cfg.Bootstrap, _ = f.GetString("bootstrap")
	}
	if f.Changed("fanout") {
		cfg.Fanout, _ = f.GetInt("fanout")
	}
	if f.Changed("ttl") {
		cfg.TTL, _ = f.GetInt("ttl")
	}
	if f.Changed("peer-limit") {
		cfg.PeerLimit, _ = f.GetInt("peer-limit")
	}
	if f.Changed("ping-interval") {
		cfg.PingIntervalS, _ = f.GetFloat64("ping-interval")
	}
	if f.Changed("peer-timeout") {
		cfg.PeerTimeoutS, _ = f.GetFloat64("peer-timeout")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("mode") {
		mode, _ := f.GetString("mode")
		cfg.Mode = domain.Mode(mode)
	}
	if f.Changed("pull-interval") {
		cfg.PullIntervalS, _ = f.GetFloat64("pull-interval")
	}
	if f.Changed("ihave-max-ids") {
		cfg.IHaveMaxIDs, _ = f.GetInt("ihave-max-ids")
	}
	if f.Changed("pow-k") {
		cfg.PoWK, _ = f.GetInt("pow-k")
	}
}
