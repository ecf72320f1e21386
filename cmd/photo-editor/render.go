package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		in         string
		recipePath string
		out        string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Apply a recipe to a photo and write the export",
		Long: `Loads a photo from a path or URL, applies an edit recipe (YAML or JSON) and
writes the full-resolution export. The source file is never modified.`,
		Example: `  photo-editor render --in beach.jpg --recipe warm.yaml --out beach-edit.webp

  # Force JPEG output
  photo-editor render --in https://example.com/p.png --recipe r.json --out p.jpg --format jpeg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Export.Format = strings.ToLower(format)
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			warnMissingWebP(cfg, logger)

			recipe := &editor.Recipe{}
			if recipePath != "" {
				if recipe, err = editor.LoadRecipe(recipePath); err != nil {
					return err
				}
			}

			sess := editor.NewSession(editor.WithConfig(*cfg), editor.WithLogger(logger))
			defer sess.Close()

			ctx := cmd.Context()
			if _, err := sess.Load(ctx, imaging.PathSource(in)); err != nil {
				return err
			}
			if err := sess.ApplyRecipe(recipe); err != nil {
				return fmt.Errorf("invalid recipe %s: %w", recipePath, err)
			}

			blob, err := sess.Export(ctx)
			if err != nil {
				return err
			}
			if blob.FellBack {
				logger.Warn("Export used the fallback encoder", "format", blob.Format)
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(blob.Data)
				return err
			}
			if ext := "." + string(blob.Format); !strings.EqualFold(filepath.Ext(out), ext) && !isJPEGExt(out, blob.Format) {
				logger.Warn("Output extension does not match the encoded format", "out", out, "format", blob.Format)
			}
			if err := os.WriteFile(out, blob.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %dx%d %s, %d bytes\n", out, blob.Width, blob.Height, blob.Format, len(blob.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Source photo path or http(s) URL")
	cmd.Flags().StringVarP(&recipePath, "recipe", "r", "", "Edit recipe (YAML or JSON); omitted means no edits")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path, or - for stdout")
	cmd.Flags().StringVar(&format, "format", "", "Override the export format (webp or jpeg)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(in) == "" || strings.TrimSpace(out) == "" {
			return errors.New("--in and --out must not be empty")
		}
		return nil
	}
	return cmd
}

func isJPEGExt(path string, f imaging.Format) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return f == imaging.FormatJPEG && (ext == ".jpg" || ext == ".jpeg")
}
