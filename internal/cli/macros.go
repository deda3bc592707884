package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/render"
	"github.com/yaklabco/gomdmath/pkg/reporter"
)

//nolint:gochecknoglobals // Read-only column list.
var macroHeaders = []string{"NAME", "ARITY", "EXPANSION"}

func newMacrosCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "macros",
		Short: "List the macro table handed to math renderers",
		Long: `List the built-in LaTeX macros merged with those from the configuration
files, in the order they are passed to the renderer.

Examples:
  gomdmath macros
  gomdmath macros --format json
  gomdmath macros --format flags     One katex --macro argument per line`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMacros(cmd, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, flags")

	return cmd
}

func runMacros(cmd *cobra.Command, format string) error {
	loadResult, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	table, err := render.MacroTable(loadResult.Config)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(table); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case "flags":
		for _, flag := range table.Flags() {
			fmt.Fprintln(out, flag)
		}
	case "text":
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
		formatter := pretty.NewTableFormatter(styles, reporter.TerminalWidth(out))
		fmt.Fprint(out, formatter.FormatTable(macroHeaders, macroRows(table)))
	default:
		return fmt.Errorf("%w: unknown format %q; valid formats: text, json, flags", ErrInvalidUsage, format)
	}
	return nil
}

func macroRows(table macros.Table) []pretty.TableRow {
	return lo.Map(table.Names(), func(name string, _ int) pretty.TableRow {
		m := table[name]
		return pretty.TableRow{Cells: []string{name, strconv.Itoa(m.Arity), m.Expansion}}
	})
}
