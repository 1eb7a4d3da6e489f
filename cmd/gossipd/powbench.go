package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gossipmesh/gossipd/internal/domain"
	"github.com/gossipmesh/gossipd/internal/pow"
)

var powBenchK int

func init() {
	rootCmd.AddCommand(powBenchCmd)
	powBenchCmd.Flags().IntVar(&powBenchK, "k", 4, "proof-of-work difficulty to benchmark")
}

var powBenchCmd = &cobra.Command{
	Use:   "pow-bench",
	Short: "Benchmark a proof-of-work search at a given difficulty",
	Long: `Compute one proof-of-work solution for a freshly generated node_id at
the given difficulty and print the nonce, hash, and time spent. elapsed_ms
never appears on the wire (§4.10) — this command is purely an operator tool
for choosing a pow_k that honest joiners can solve quickly.`,
	RunE: runPowBench,
}

func runPowBench(cmd *cobra.Command, args []string) error {
	nodeID := domain.NewNodeID()
	start := time.Now()
	proof := pow.Compute(nodeID, powBenchK)
	elapsed := time.Since(start)

	fmt.Printf("node_id:    %s\n", nodeID)
	fmt.Printf("k:          %d\n", powBenchK)
	fmt.Printf("nonce:      %d\n", proof.Nonce)
	fmt.Printf("hash:       %s\n", proof.Hash)
	fmt.Printf("elapsed_ms: %d\n", elapsed.Milliseconds())
	return nil
}
