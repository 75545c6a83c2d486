package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
)

type queryOptions struct {
	Select string
	From   string
	Where  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [ADQL]",
		Short: "Run an ADQL query",
		Long: `Run an ADQL query against the TAP service and print the result.

The query is either given as an argument ("-" reads it from stdin) or
assembled from --select, --from and --where:

  vizier query "SELECT TOP 5 * FROM \"I/239/hip_main\""
  vizier query --select "TOP 5 HIP, Vmag" --from '"I/239/hip_main"' --where "Vmag < 2"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Select, "select", "", "select list, without the SELECT keyword")
	cmd.Flags().StringVar(&opts.From, "from", "", "table, without the FROM keyword")
	cmd.Flags().StringVar(&opts.Where, "where", "", "condition, without the WHERE keyword")

	return cmd
}

func runQuery(rootOpts *RootOptions, opts *queryOptions, args []string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	endpoint := rootOpts.endpoint()

	ctx, cancel := rootOpts.requestContext(cmd, endpoint)
	defer cancel()

	client := tap.NewClient(endpoint, tap.WithLogger(rootOpts.logger(cmd)))

	var send func() (*tap.QueryResult[tap.Row], error)
	switch {
	case len(args) == 1 && opts.usesBuilder():
		return NewExitError(ExitCommandError, "give either an ADQL argument or --select/--from, not both")
	case len(args) == 1:
		adql, err := readQuery(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		formatter.VerboseLog("query: %s", adql)
		send = func() (*tap.QueryResult[tap.Row], error) { return client.Rows(ctx, adql) }
	case opts.Select != "" && opts.From != "":
		ready := client.Select("SELECT " + opts.Select).From("FROM " + opts.From)
		if opts.Where != "" {
			ready = ready.Where("WHERE " + opts.Where)
		}
		formatter.VerboseLog("query: %s", ready.Build())
		send = func() (*tap.QueryResult[tap.Row], error) { return ready.Send(ctx) }
	case opts.usesBuilder():
		return NewExitError(ExitCommandError, "--select and --from are both required")
	default:
		return NewExitError(ExitCommandError, "no query given")
	}

	formatter.VerboseLog("endpoint: %s", endpoint)
	start := time.Now()
	res, err := send()
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}
	took := time.Since(start)

	if rootOpts.Format == "json" {
		return formatter.JSON(res)
	}
	return printResult(formatter, catalog.Tabulate(res, took))
}

func (o *queryOptions) usesBuilder() bool {
	return o.Select != "" || o.From != "" || o.Where != ""
}

// readQuery returns arg, or stdin when arg is "-".
func readQuery(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "read query from stdin", err)
	}
	adql := strings.TrimSpace(string(b))
	if adql == "" {
		return "", NewExitError(ExitCommandError, "empty query on stdin")
	}
	return adql, nil
}

// printResult renders a tabulated result with units in the headers.
func printResult(f *OutputFormatter, res *catalog.QueryResult) error {
	headers := make([]string, len(res.Meta))
	for i, col := range res.Meta {
		headers[i] = col.Name
		if unit := col.UnitString(); unit != "" {
			headers[i] = fmt.Sprintf("%s [%s]", col.Name, unit)
		}
	}
	if err := f.Table(headers, res.Rows); err != nil {
		return err
	}
	f.Line("%d row(s) in %s", res.RowCount, res.Duration.Round(time.Millisecond))
	return nil
}
