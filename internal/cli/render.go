package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/reporter"
	"github.com/yaklabco/gomdmath/pkg/runner"
)

type renderFlags struct {
	format         string
	flavor         string
	renderer       string
	highlight      string
	include        []string
	ignore         []string
	followSymlinks bool
	strict         bool
	verbose        bool
	compact        bool
}

func newRenderCommand() *cobra.Command {
	var cfg config.Config
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Render Markdown files to HTML",
		Long:  renderLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, &cfg, flags)
		},
	}

	addRenderFlags(cmd, &cfg, flags)

	return cmd
}

const renderLongDescription = `Render Markdown files with math to HTML fragments.

By default, renders all .md and .markdown files in the current directory
and subdirectories, writing <name>.html next to each source. Outputs whose
content has not changed are left untouched.

Examples:
  gomdmath render                      # Render current directory
  gomdmath render docs/                # Render docs directory
  gomdmath render --out-dir site       # Mirror outputs under site/
  gomdmath render README.md --stdout   # Print HTML instead of writing
  gomdmath render --renderer katex     # Server-side KaTeX
  gomdmath render --format json        # Machine-readable results
  gomdmath render --strict             # Fail if any formula fell back`

func runRender(cmd *cobra.Command, args []string, cfg *config.Config, flags *renderFlags) error {
	logger := commandLogger(cmd)

	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(flags.flavor)
	}
	if cmd.Flags().Changed("renderer") {
		cfg.Renderer = flags.renderer
	}
	if cmd.Flags().Changed("highlight") {
		cfg.Highlight = flags.highlight
	}
	cfg.Ignore = flags.ignore

	finalCfg, pipeline, err := loadPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		IncludeGlobs:   flags.include,
		ExcludeGlobs:   finalCfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           finalCfg.Jobs,
		OutputDir:      finalCfg.OutputDir,
		NoWrite:        finalCfg.Stdout,
		Force:          finalCfg.Force,
	}

	logger.Debug("starting render run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldOutput, runOpts.OutputDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	ctx := commandContext(cmd)
	renderRunner := runner.New(pipeline)
	renderRunner.Logger = logger

	result, err := renderRunner.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("render run failed: %w", err)
	}

	logger.Debug("render run finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesRendered, result.Stats.FilesRendered,
		logging.FieldFilesUnchanged, result.Stats.FilesUnchanged,
		logging.FieldBytesWritten, result.Stats.BytesWritten,
		logging.FieldElapsed, result.Stats.Elapsed,
	)

	// With --stdout the documents own stdout; results go to stderr.
	reportWriter := cmd.OutOrStdout()
	if finalCfg.Stdout {
		if err := writeDocuments(cmd.OutOrStdout(), result); err != nil {
			return fmt.Errorf("write documents: %w", err)
		}
		reportWriter = cmd.ErrOrStderr()
	}

	format, err := reporter.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      reportWriter,
		Format:      format,
		Color:       colorMode(cmd),
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	return errorFromExitCode(ExitCodeFromResult(result, flags.strict))
}

// writeDocuments prints rendered documents. Several documents are each
// preceded by an HTML comment naming their source.
func writeDocuments(w io.Writer, result *runner.Result) error {
	rendered := 0
	for _, file := range result.Files {
		if file.Error == nil {
			rendered++
		}
	}

	for _, file := range result.Files {
		if file.Error != nil {
			continue
		}
		if rendered > 1 {
			if _, err := fmt.Fprintf(w, "<!-- %s -->\n", file.Path); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, file.HTML); err != nil {
			return err
		}
	}
	return nil
}

func addRenderFlags(cmd *cobra.Command, cfg *config.Config, flags *renderFlags) {
	cmd.Flags().StringVarP(&cfg.OutputDir, "out-dir", "o", "", "write outputs under this directory, mirroring the source tree")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().StringVar(&flags.renderer, "renderer", config.DefaultRenderer, "math renderer: client, katex, image")
	cmd.Flags().StringVar(&cfg.RendererCommand, "renderer-command", "", "katex executable for the katex renderer")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringVar(&flags.highlight, "highlight", config.DefaultHighlight, "code block highlighting: none, tag")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns to include")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&cfg.Stdout, "stdout", false, "print HTML to stdout instead of writing files")
	cmd.Flags().BoolVarP(&cfg.Force, "force", "f", false, "rewrite outputs even when unchanged")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero if any formula fell back to source")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list every file and print a detailed summary")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
}
