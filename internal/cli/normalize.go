package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/config"
)

type normalizeFlags struct {
	file     string
	renderer string
}

func newNormalizeCommand() *cobra.Command {
	var cfg config.Config
	flags := &normalizeFlags{}

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Render the math in an HTML document",
		Long: `Read HTML produced by any Markdown engine, find the math spans in its
text, and print the document with each span replaced by rendered output.

Code, preformatted blocks and already rendered fragments are left alone, so
running normalize twice gives the same result as running it once.

Examples:
  pandoc notes.md | gomdmath normalize
  gomdmath normalize --file page.html --renderer katex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "read HTML from a file instead of stdin")
	cmd.Flags().StringVar(&flags.renderer, "renderer", config.DefaultRenderer, "math renderer: client, katex, image")

	return cmd
}

func runNormalize(cmd *cobra.Command, cfg *config.Config, flags *normalizeFlags) error {
	if cmd.Flags().Changed("renderer") {
		cfg.Renderer = flags.renderer
	}

	var (
		data []byte
		err  error
	)
	if flags.file != "" {
		data, err = os.ReadFile(flags.file)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	_, pipeline, err := loadPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	result := pipeline.Normalizer().Process(commandContext(cmd), string(data), nil)
	commandLogger(cmd).Debug("document normalized",
		logging.FieldSpans, result.Spans,
		logging.FieldFailed, result.Failed,
	)

	if _, err := io.WriteString(cmd.OutOrStdout(), result.HTML); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
