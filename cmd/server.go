package cmd

import (
	"github.com/spf13/cobra"

	"voxfolio/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the voxfolio HTTP server",
	Long:  `Start the HTTP server that serves the portfolio API, the clip player endpoints and the admin surface.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
