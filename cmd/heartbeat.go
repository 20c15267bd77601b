package cmd

import (
	"context"
	"fmt"

	"github.com/DataWorkbench/glog"
	"github.com/spf13/cobra"

	"github.com/DataWorkbench/paimonweb/config"
	"github.com/DataWorkbench/paimonweb/server"
)

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat SESSION_ID",
	Short: "Send one heartbeat for a gateway session and print its status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		lp := glog.NewDefault().WithLevel(glog.Level(cfg.LogLevel))
		defer func() { _ = lp.Close() }()

		client := server.NewGatewayClient(cfg.Gateway, lp)
		status := client.TriggerSessionHeartbeat(context.Background(), args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], stateColor(status.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(heartbeatCmd)
}
