package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/DataWorkbench/paimonweb/gateway"
)

var (
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	red    = color.New(color.FgHiRed).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

func newTable(out io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
	)
	table.Header(headers)
	return table
}

// formatRow renders the fields of one result row, NULL for missing values.
func formatRow(row gateway.Row, width int) []string {
	cells := make([]string, width)
	for i := range cells {
		if i >= len(row.Fields) || row.Fields[i] == nil {
			cells[i] = "NULL"
			continue
		}
		cells[i] = fmt.Sprint(row.Fields[i])
	}
	return cells
}

func writeRows(out io.Writer, columns []gateway.Column, rows []gateway.Row) error {
	headers := make([]string, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, c.Name)
	}
	table := newTable(out, headers)
	for _, row := range rows {
		if err := table.Append(formatRow(row, len(headers))); err != nil {
			return err
		}
	}
	return table.Render()
}

func stateColor(state string) string {
	switch state {
	case "RUNNING", "ACTIVE":
		return yellow(state)
	case "SUCCEED", "FINISHED":
		return green(state)
	case "FAILED", "CANCELED", "INACTIVE":
		return red(state)
	default:
		return state
	}
}
