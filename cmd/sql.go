package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DataWorkbench/paimonweb/executor"
)

var (
	sqlTaskType string
	sqlMaxRows  int
)

var sqlCmd = &cobra.Command{
	Use:   "sql STATEMENT",
	Short: "Execute one statement and print its result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskType, err := executor.ParseTaskType(sqlTaskType)
		if err != nil {
			return err
		}
		ctx := context.Background()
		jm, release, err := setup(ctx)
		if err != nil {
			return err
		}
		defer release()

		result, err := jm.RunSQL(ctx, taskType, strings.Join(args, " "), sqlMaxRows)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(result.Columns) > 0 {
			if err = writeRows(out, result.Columns, result.Rows); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%s %s, %d row(s)\n", cyan(result.ResultKind), result.RecordID, len(result.Rows))
		if result.JobID != "" {
			fmt.Fprintf(out, "job id: %s\n", result.JobID)
		}
		if result.Truncated {
			fmt.Fprintf(out, "%s result truncated at %d rows\n", yellow("warning:"), sqlMaxRows)
		}
		return nil
	},
}

func init() {
	sqlCmd.Flags().StringVarP(&sqlTaskType, "task-type", "t", string(executor.TaskTypeFlinkSQLGateway), "executor backend")
	sqlCmd.Flags().IntVar(&sqlMaxRows, "max-rows", 100, "stop fetching after this many rows, 0 for no limit")
	rootCmd.AddCommand(sqlCmd)
}
