package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voxfolio/server"
)

var rootCmd = &cobra.Command{
	Use:   "voxfolio",
	Short: "Voxfolio is a portfolio backend for voice-over artists.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
