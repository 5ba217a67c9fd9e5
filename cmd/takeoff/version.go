package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "takeoff %s\n", version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
