package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/config"
)

type endpointAddOptions struct {
	Name       string
	Timeout    time.Duration
	SetDefault bool
}

// NewEndpointsCommand creates the endpoints command and its add subcommand.
func NewEndpointsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "endpoints",
		Short:         "List saved TAP endpoints",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndpointsList(rootOpts, cmd)
		},
	}
	cmd.AddCommand(newEndpointAddCommand(rootOpts))
	return cmd
}

func newEndpointAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &endpointAddOptions{}

	cmd := &cobra.Command{
		Use:           "add <url>",
		Short:         "Save a TAP sync endpoint to the config file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndpointAdd(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "profile name (default tap-<host>)")
	cmd.Flags().DurationVar(&opts.Timeout, "request-timeout", 0, "query timeout for this endpoint")
	cmd.Flags().BoolVar(&opts.SetDefault, "default", false, "make this the default endpoint")

	return cmd
}

func runEndpointsList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()

	if opts.Format == "json" {
		eps := cfg.Endpoints
		if eps == nil {
			eps = []config.Endpoint{}
		}
		return formatter.JSON(eps)
	}

	def := config.DefaultEndpoint(cfg)
	rows := make([][]string, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		mark := ""
		if def != nil && def.Name == ep.Name {
			mark = "*"
		}
		rows[i] = []string{mark, ep.Name, ep.URL, ep.RequestTimeout().String()}
	}
	return formatter.Table([]string{"", "name", "url", "timeout"}, rows)
}

func runEndpointAdd(rootOpts *RootOptions, opts *endpointAddOptions, raw string, cmd *cobra.Command) error {
	ep, err := config.ParseEndpoint(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "add endpoint", err)
	}
	if opts.Name != "" {
		ep.Name = opts.Name
	}
	if opts.Timeout > 0 {
		ep.Timeout = opts.Timeout.String()
	}

	cfg := rootOpts.config()
	if cfg.HasEndpoint(ep.Name) {
		return NewExitError(ExitCommandError, "endpoint "+ep.Name+" already exists")
	}
	if opts.SetDefault {
		cfg.Preferences.DefaultEndpoint = ep.Name
	}
	if err := config.SaveEndpoint(cfg, ep); err != nil {
		return WrapExitError(ExitCommandError, "save config", &app.ErrConfig{Cause: err})
	}

	rootOpts.formatter(cmd).Line("saved %s (%s)", ep.Name, ep.DisplayString())
	return nil
}
