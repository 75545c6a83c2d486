package cli

import (
	"github.com/spf13/cobra"

	"github.com/mclrc/vizier/internal/catalog"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "columns <table>",
		Short:         "Describe the columns of a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(rootOpts, args[0], cmd)
		},
	}
}

func runColumns(opts *RootOptions, table string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	endpoint := opts.endpoint()

	ctx, cancel := opts.requestContext(cmd, endpoint)
	defer cancel()

	svc, err := opts.connect(ctx, cmd, endpoint)
	if err != nil {
		return err
	}
	defer svc.Disconnect()

	cols, err := svc.LoadColumns(ctx, table)
	if err != nil {
		return WrapExitError(ExitFailure, "describe "+table, err)
	}

	if opts.Format == "json" {
		if cols == nil {
			cols = []catalog.Column{}
		}
		return formatter.JSON(cols)
	}

	rows := make([][]string, len(cols))
	for i, c := range cols {
		rows[i] = []string{c.Name, c.DataType, c.Unit, c.UCD, c.Description}
	}
	return formatter.Table([]string{"column", "datatype", "unit", "ucd", "description"}, rows)
}
