// File: cmd/nanoloop/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Command nanoloop hosts firmware images built on the nanoloop runtime
// on a development machine: it assembles the runtime over the hosted
// timer backend, runs a demo task set, and reports scheduler activity.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nanoloop",
	Short: "Fixed-capacity cooperative executor host",
	Long:  "nanoloop runs cooperative firmware task sets on a hosted timer backend",
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
