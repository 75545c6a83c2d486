package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/catalog/tapschema"
	"github.com/mclrc/vizier/internal/config"
	"github.com/mclrc/vizier/internal/logger"
	"github.com/mclrc/vizier/internal/tui"
	"github.com/mclrc/vizier/tap"
)

// runTUI opens the terminal UI. Logs go to ~/.vizier/vizier.log since the
// terminal belongs to the UI.
func runTUI(opts *RootOptions, cmd *cobra.Command) error {
	cfg := opts.config()

	out, closeLog := tuiLogOutput()
	defer closeLog()

	level := cfg.Preferences.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Output: out})

	svc := app.NewService(tapschema.New(tap.WithLogger(log)), log)

	// Only an explicit choice skips the endpoint screen.
	endpoint := ""
	if opts.Endpoint != "" || cfg.EnvEndpoint != "" {
		endpoint = opts.endpoint()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := tea.NewProgram(tui.NewModel(svc, cfg, endpoint),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	if _, err := p.Run(); err != nil {
		return WrapExitError(ExitFailure, "terminal ui", err)
	}

	_ = svc.Disconnect()
	return nil
}

func tuiLogOutput() (io.Writer, func()) {
	path, err := config.LogPath()
	if err != nil {
		return nil, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, func() {}
	}
	return f, func() { _ = f.Close() }
}
