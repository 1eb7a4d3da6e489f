// Command gossipd runs a node of the gossip dissemination network and a
// small operational CLI around it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
