package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gossipd",
	Short: "A UDP peer-to-peer gossip dissemination node",
	Long: `gossipd runs one node of a UDP-based epidemic (gossip) dissemination
network: membership management, push and push-pull message dissemination,
liveness probing, bootstrap recovery, and optional proof-of-work admission
control.`,
}

// Execute runs the root command; main only has to check the error.
func Execute() error {
	return rootCmd.Execute()
}
