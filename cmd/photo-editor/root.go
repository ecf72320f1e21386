package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-editor-mcp/internal/config"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "photo-editor",
		Short: "Non-destructive photo editor with an MCP interface",
		Long: `photo-editor edits photos without touching the original. Edits are kept as
parameters (adjustments, a preset, crop, rotation and flips) and rendered on
demand, either as a live preview or as a full-resolution export.

Settings come from an optional YAML file (--config) and PHOTO_EDITOR_*
environment variables, which may also be placed in a .env file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newRenderCmd(opts),
		newPresetsCmd(),
	)
	return cmd
}

// load reads the configuration and installs its logger as the default.
// Logs always go to stderr; stdout carries protocol or command output.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// warnMissingWebP logs a warning when the configured export format is WebP
// but this build has no WebP encoder, and reports whether it did.
func warnMissingWebP(cfg *config.Config, logger *slog.Logger) bool {
	if imaging.Format(cfg.Export.Format) != imaging.FormatWebP || imaging.WebPAvailable() {
		return false
	}
	logger.Warn("WebP export needs a build with -tags govips; exports will fall back to JPEG",
		"hint", "set export.format to jpeg or PHOTO_EDITOR_EXPORT_FORMAT=jpeg")
	return true
}
