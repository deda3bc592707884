package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/gomdmath/internal/configloader"
	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/reporter"
)

// maxHelpWidth caps the width long descriptions are wrapped to.
const maxHelpWidth = 100

const helpTemplate = `{{ heading .CommandPath }}

{{with (or .Long .Short)}}{{ wrap (trimRight .) }}

{{end}}{{ usage . }}`

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}
{{- end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]
{{- end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Available Commands:" }}
{{- range .Commands}}{{if .IsAvailableCommand}}
  {{ command (pad .Name .NamePadding) }} {{ .Short }}
{{- end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}
{{- if not .HasParent}}

{{ heading "Configuration:" }}
  {{ dim configHint }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

// helpFormatter renders cobra help and usage text with the report styles.
type helpFormatter struct {
	styles *pretty.Styles
	usage  *template.Template
	help   *template.Template
}

// applyHelp installs styled help and usage output on root and, through
// cobra's inheritance, every subcommand.
func applyHelp(root *cobra.Command, colorMode string, writer io.Writer) {
	h := &helpFormatter{styles: pretty.NewStyles(pretty.IsColorEnabled(colorMode, writer))}
	width := min(reporter.TerminalWidth(writer), maxHelpWidth)

	funcs := template.FuncMap{
		"heading":    h.styles.SummaryTitle.Render,
		"command":    h.styles.Output.Render,
		"dim":        h.styles.Dim.Render,
		"flags":      h.formatFlags,
		"pad":        pad,
		"trimRight":  trimRightLines,
		"wrap":       func(text string) string { return wordwrap.String(text, width) },
		"configHint": configHint,
	}
	h.usage = template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	funcs["usage"] = h.renderUsage
	h.help = template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate))

	root.SetUsageFunc(func(cmd *cobra.Command) error {
		return h.usage.Execute(cmd.OutOrStdout(), cmd)
	})
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if err := h.help.Execute(cmd.OutOrStdout(), cmd); err != nil {
			cmd.PrintErrln(fmt.Errorf("render help: %w", err))
		}
	})
}

func (h *helpFormatter) renderUsage(cmd *cobra.Command) (string, error) {
	var builder strings.Builder
	if err := h.usage.Execute(&builder, cmd); err != nil {
		return "", fmt.Errorf("render usage: %w", err)
	}
	return builder.String(), nil
}

// helpFlag is one row of a flag listing.
type helpFlag struct {
	names string
	usage string
}

// formatFlags lists flags in two aligned columns: names with the value
// type, then usage with any non-empty default.
func (h *helpFormatter) formatFlags(set *pflag.FlagSet) string {
	var rows []helpFlag
	set.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		valueName, usage := pflag.UnquoteUsage(flag)

		names := "    --" + flag.Name
		if flag.Shorthand != "" {
			names = "-" + flag.Shorthand + ", --" + flag.Name
		}
		names = h.styles.FilePath.Render(names)
		if valueName != "" {
			names += " " + h.styles.Dim.Render(valueName)
		}

		if showDefault(flag) {
			usage += h.styles.Dim.Render(fmt.Sprintf(" (default %s)", flag.DefValue))
		}
		rows = append(rows, helpFlag{names: names, usage: usage})
	})

	width := lo.Max(lo.Map(rows, func(row helpFlag, _ int) int {
		return lipgloss.Width(row.names)
	}))

	lines := lo.Map(rows, func(row helpFlag, _ int) string {
		return "  " + row.names + strings.Repeat(" ", width-lipgloss.Width(row.names)+3) + row.usage
	})
	return strings.Join(lines, "\n")
}

// showDefault reports whether a flag's default is worth printing.
func showDefault(flag *pflag.Flag) bool {
	switch flag.DefValue {
	case "", "false", "0", "[]", "0s":
		return false
	}
	return flag.Value.Type() != "bool"
}

func pad(str string, width int) string {
	if len(str) >= width {
		return str
	}
	return str + strings.Repeat(" ", width-len(str))
}

func trimRightLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// configHint names the configuration sources shown at the foot of the root help.
func configHint() string {
	return configloader.ProjectConfigName + " (searched upward to the repository root), " +
		"--config, and GOMDMATH_* variables; see 'gomdmath config --env'"
}
