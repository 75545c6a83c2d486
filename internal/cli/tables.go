package cli

import (
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [schema]",
		Short: "List schemas, or the tables of one schema",
		Long: `Without an argument, list the schemas published in TAP_SCHEMA.
With a schema name, list its tables.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, args, cmd)
		},
	}
}

func runTables(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	endpoint := opts.endpoint()

	ctx, cancel := opts.requestContext(cmd, endpoint)
	defer cancel()

	svc, err := opts.connect(ctx, cmd, endpoint)
	if err != nil {
		return err
	}
	defer svc.Disconnect()

	header := "schema"
	var names []string
	if len(args) == 0 {
		tree, err := svc.LoadSchemaTree(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "list schemas", err)
		}
		for _, s := range tree.Schemas {
			names = append(names, s.Name)
		}
	} else {
		header = "table"
		names, err = svc.LoadTables(ctx, args[0])
		if err != nil {
			return WrapExitError(ExitFailure, "list tables", err)
		}
	}

	if opts.Format == "json" {
		if names == nil {
			names = []string{}
		}
		return formatter.JSON(names)
	}

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}
	return formatter.Table([]string{header}, rows)
}
