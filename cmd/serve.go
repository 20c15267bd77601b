package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DataWorkbench/paimonweb/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job manager gRPC server and keep a gateway session alive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
