package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/DataWorkbench/glog"
	"github.com/spf13/cobra"

	"github.com/DataWorkbench/paimonweb/config"
	"github.com/DataWorkbench/paimonweb/server"
	"github.com/DataWorkbench/paimonweb/service"
)

var rootCmd = &cobra.Command{
	Use:   "paimonweb",
	Short: "Job manager of the paimon web console",
	Long: `paimonweb runs SQL through a Flink SQL gateway and deploys
Flink application clusters on YARN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.FilePath, "config", "c", "", "path of the yaml config file")
}

// setup loads the config and builds the job service for a one-shot
// command. The returned func releases what it opened.
func setup(ctx context.Context) (*service.JobManagerService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	lp := glog.NewDefault().WithLevel(glog.Level(cfg.LogLevel))
	ctx = glog.WithContext(ctx, lp)

	c, err := server.NewComponents(ctx, cfg, lp)
	if err != nil {
		_ = lp.Close()
		return nil, nil, err
	}
	release := func() {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = lp.Close()
	}
	return server.NewJobService(cfg, c, lp), release, nil
}
