package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/render"
	"github.com/yaklabco/gomdmath/pkg/reporter"
)

type benchFlags struct {
	renderers  []string
	iterations int
	showHTML   bool
}

// benchHeaders are the columns of the comparison table.
//
//nolint:gochecknoglobals // Read-only column list.
var benchHeaders = []string{"RENDERER", "SPANS", "FAILED", "RUNS", "MEAN", "TOTAL"}

func newBenchCommand() *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench [file]",
		Short: "Compare math renderers on one document",
		Long: `Render one document with several math renderers concurrently and
compare their timings and fallback counts. Reads stdin when no file is given.

Examples:
  gomdmath bench notes.md
  gomdmath bench notes.md --renderers client,katex --iterations 20
  gomdmath bench notes.md --show-html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.renderers, "renderers", []string{"client", "image"},
		"renderers to compare: client, katex, image")
	cmd.Flags().IntVarP(&flags.iterations, "iterations", "n", 10, "renders per renderer")
	cmd.Flags().BoolVar(&flags.showHTML, "show-html", false, "print each renderer's HTML after the table")

	return cmd
}

func runBench(cmd *cobra.Command, args []string, flags *benchFlags) error {
	names := lo.Uniq(flags.renderers)
	if len(names) == 0 {
		return fmt.Errorf("%w: --renderers must name at least one renderer", ErrInvalidUsage)
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	loadResult, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	pipelines := make([]*render.Pipeline, 0, len(names))
	for _, name := range names {
		cfg := loadResult.Config.Clone()
		cfg.Renderer = name
		pipeline, err := render.FromConfig(cfg, nil)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidUsage, name, err)
		}
		pipelines = append(pipelines, pipeline)
	}

	comparisons, err := render.Compare(commandContext(cmd), string(data), flags.iterations, pipelines...)
	if err != nil {
		return fmt.Errorf("compare renderers: %w", err)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	formatter := pretty.NewTableFormatter(styles, reporter.TerminalWidth(out))

	rows := lo.Map(comparisons, func(c render.Comparison, _ int) pretty.TableRow {
		row := pretty.TableRow{Cells: []string{
			c.Name,
			strconv.Itoa(c.Spans),
			strconv.Itoa(c.Failed),
			strconv.Itoa(c.Iterations),
			c.Mean.Round(time.Microsecond).String(),
			c.Total.Round(time.Microsecond).String(),
		}}
		if c.Failed > 0 {
			row.Status = pretty.RowWarn
		}
		return row
	})
	fmt.Fprint(out, formatter.FormatTable(benchHeaders, rows))

	if flags.showHTML {
		for _, c := range comparisons {
			fmt.Fprintf(out, "\n%s\n%s", styles.Bold.Render(c.Name), c.HTML)
		}
	}
	return nil
}
