package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/photo-editor-mcp/internal/preset"
)

func newPresetsCmd() *cobra.Command {
	var (
		category string
		asYAML   bool
	)

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in preset looks",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := preset.All()
			if category != "" {
				c, ok := preset.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q (have %v)", category, preset.Categories())
				}
				list = preset.ByCategory(c)
			}

			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(list)
			}

			_, err := lipgloss.Fprintln(cmd.OutOrStdout(), presetTable(list).Render())
			return err
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list one category (Vivid, Warm, Cool, B&W, Cinematic, Matte)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")
	return cmd
}

var presetHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var presetCellStyle = lipgloss.NewStyle().Padding(0, 1)

func presetTable(list []preset.Preset) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CATEGORY", "SWATCH", "OVERRIDES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return presetHeaderStyle
			}
			return presetCellStyle
		})
	for _, p := range list {
		sw := p.Swatch()
		t.Row(p.ID, p.Name, string(p.Category), sw.From+".."+sw.To, formatOverrides(p.Overrides))
	}
	return t
}

func formatOverrides(o preset.Overrides) string {
	parts := make([]string, 0, len(o))
	for f, v := range o {
		parts = append(parts, fmt.Sprintf("%s=%g", f, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
