package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/catalog/tapschema"
	"github.com/mclrc/vizier/internal/config"
	"github.com/mclrc/vizier/internal/logger"
	"github.com/mclrc/vizier/tap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Endpoint string
	Timeout  time.Duration

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the vizier CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vizier",
		Short: "Query VizieR and other TAP services with ADQL",
		Long: `vizier queries astronomical catalogues through the Table Access Protocol.

Without a subcommand it opens a terminal UI to browse TAP_SCHEMA and run
ADQL. Subcommands run a single query or list the catalogue metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", &app.ErrConfig{Cause: err})
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Endpoint, "endpoint", "e", "", "TAP sync endpoint URL or saved endpoint name")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "request timeout (default from config)")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewColumnsCommand(opts))
	cmd.AddCommand(NewEndpointsCommand(opts))

	return cmd
}

// endpoint resolves the endpoint URL for this invocation.
func (o *RootOptions) endpoint() string {
	return config.ResolveEndpoint(o.config(), o.Endpoint)
}

func (o *RootOptions) config() *config.Config {
	if o.cfg == nil {
		o.cfg = &config.Config{}
	}
	return o.cfg
}

func (o *RootOptions) timeout(endpoint string) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return config.TimeoutFor(o.config(), endpoint)
}

// logger writes to the command's stderr at the configured level, or debug
// with --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := o.config().Preferences.LogLevel
	if o.Verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Output: cmd.ErrOrStderr()})
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// requestContext bounds a command by the endpoint timeout.
func (o *RootOptions) requestContext(cmd *cobra.Command, endpoint string) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.timeout(endpoint))
}

// connect opens an application service on the resolved endpoint.
func (o *RootOptions) connect(ctx context.Context, cmd *cobra.Command, endpoint string) (*app.Service, error) {
	log := o.logger(cmd)
	svc := app.NewService(tapschema.New(tap.WithLogger(log)), log)
	if err := svc.Connect(ctx, endpoint); err != nil {
		return nil, WrapExitError(ExitFailure, "connect", err)
	}
	return svc, nil
}
