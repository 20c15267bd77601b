package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var submitConf map[string]string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Deploy a jar as a Flink application cluster on YARN",
	Example: `  paimonweb submit --set userJarPath=/jars/etl.jar --set userJarMainAppClass=com.example.Etl \
    --set jobMemory=1GB --set taskMemory=2GB --set flinkConfigPath=/etc/flink/conf \
    --set hadoopConfigPath=/etc/hadoop/conf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		jm, release, err := setup(ctx)
		if err != nil {
			return err
		}
		defer release()

		outcome, recordID := jm.SubmitJob(ctx, submitConf)
		out := cmd.OutOrStdout()
		if !outcome.Success {
			fmt.Fprintf(out, "%s record %s\n", stateColor("FAILED"), recordID)
			return errors.New(outcome.Message)
		}
		table := newTable(out, []string{"record", "application", "jobs", "web ui"})
		if err = table.Append([]string{recordID, outcome.AppID, strings.Join(outcome.JobIDs, ","), outcome.WebURL}); err != nil {
			return err
		}
		return table.Render()
	},
}

func init() {
	submitCmd.Flags().StringToStringVar(&submitConf, "set", nil, "submission config entry key=value")
	rootCmd.AddCommand(submitCmd)
}
