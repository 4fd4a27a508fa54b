package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/javajack/xlmedia"
	"github.com/javajack/xlmedia/internal/config"
)

// app carries state resolved once the persistent flags are parsed.
type app struct {
	cfg        *config.Config
	jsonOutput bool
}

// workbookOptions maps configuration onto library options.
func (a *app) workbookOptions() []xlmedia.Option {
	return []xlmedia.Option{
		xlmedia.WithLogger(slog.Default()),
		xlmedia.WithDefaultEditAs(xlmedia.EditAs(a.cfg.DefaultEditAs)),
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		state      app
	)

	cmd := &cobra.Command{
		Use:           "xlmedia",
		Short:         "Place, inspect and validate images anchored in xlsx worksheets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			state.cfg = cfg
			warning, err := configureLoggerForCLI(cmd.ErrOrStderr(), logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			if cfg.Path != "" {
				slog.Debug("config loaded", "path", cfg.Path)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XLMEDIA_CONFIG_DIR/.xlmedia.toml or ~/.xlmedia.toml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&state.jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newPlaceCmd(&state),
		newInspectCmd(&state),
		newValidateCmd(&state),
	)
	return cmd
}
