package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/render"
	"github.com/yaklabco/gomdmath/pkg/stream"
)

// ErrNoInput is returned by stream when stdin is a terminal and no file was given.
var ErrNoInput = errors.New("no input: pipe a document to stdin or use --file")

type streamFlags struct {
	file       string
	chunk      int
	delay      time.Duration
	updates    bool
	coalesce   bool
	renderer   string
	flushEvery int
}

func newStreamCommand() *cobra.Command {
	var cfg config.Config
	flags := &streamFlags{}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Render a document as it arrives, a few characters at a time",
		Long: `Feed a document to the streaming scanner in small chunks, the way text
arrives from a chat model, and render it after every emitted unit.

Open math spans are held back until they close, so no update ever shows a
half-typed formula. By default only the final HTML is printed; --updates
prints every intermediate render.

Examples:
  gomdmath stream < answer.md                   Print the final HTML
  gomdmath stream --file answer.md --updates    Print every update
  gomdmath stream --chunk 1 --delay 20ms        Simulate a slow stream
  gomdmath stream --flush-every 0 --updates     Update only on newlines and math`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStream(cmd, &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.file, "file", "", "read the document from a file instead of stdin")
	cmd.Flags().IntVar(&flags.chunk, "chunk", 1, "characters per write")
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "pause between writes")
	cmd.Flags().BoolVar(&flags.updates, "updates", false, "print every update, not just the final HTML")
	cmd.Flags().BoolVar(&flags.coalesce, "coalesce", false, "render only the last unit of each write")
	cmd.Flags().StringVar(&flags.renderer, "renderer", config.DefaultRenderer, "math renderer: client, katex, image")
	cmd.Flags().IntVar(&flags.flushEvery, "flush-every", config.DefaultFlushEvery,
		"emit a unit every N characters of text (0 disables)")

	return cmd
}

func runStream(cmd *cobra.Command, cfg *config.Config, flags *streamFlags) error {
	if flags.chunk < 1 {
		return fmt.Errorf("%w: --chunk must be at least 1", ErrInvalidUsage)
	}
	if cmd.Flags().Changed("renderer") {
		cfg.Renderer = flags.renderer
	}
	if cmd.Flags().Changed("flush-every") {
		cfg.FlushEvery = &flags.flushEvery
	}

	input, err := readStreamInput(cmd, flags.file)
	if err != nil {
		return err
	}

	finalCfg, pipeline, err := loadPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))

	opts := stream.DefaultOptions()
	opts.FlushEvery = finalCfg.StreamFlushEvery()

	var writeErr error
	ctx := commandContext(cmd)
	session := render.NewSession(ctx, pipeline, render.SessionOptions{
		Stream:   opts,
		Coalesce: flags.coalesce,
		Logger:   commandLogger(cmd),
		OnUpdate: func(update render.Update) {
			if flags.updates && writeErr == nil {
				writeErr = writeUpdate(out, styles, update)
			}
		},
	})

	ctx = logging.WithFields(ctx, logging.FieldSession, session.ID())
	logger := logging.FromContext(ctx)
	logger.Debug("stream started", logging.FieldInput, flags.file, logging.FieldCount, len([]rune(input)))

	if err := feed(ctx, session, input, flags.chunk, flags.delay); err != nil {
		return err
	}
	if err := session.Close(); err != nil {
		return fmt.Errorf("finish stream: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("write update: %w", writeErr)
	}

	logger.Debug("stream finished", logging.FieldCount, session.Updates())

	if !flags.updates {
		if _, err := io.WriteString(out, session.HTML()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// readStreamInput reads the whole document from path or stdin. Reading
// from an interactive terminal is refused.
func readStreamInput(cmd *cobra.Command, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return "", fmt.Errorf("%w: %w", ErrInvalidUsage, ErrNoInput)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// feed writes input to w in chunks of size characters, pausing delay
// between writes.
func feed(ctx context.Context, w io.StringWriter, input string, size int, delay time.Duration) error {
	runes := []rune(input)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		if _, err := w.WriteString(string(runes[start:end])); err != nil {
			return fmt.Errorf("write chunk at %d: %w", start, err)
		}

		if delay <= 0 || end == len(runes) {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("stream cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil
}

func writeUpdate(w io.Writer, styles *pretty.Styles, update render.Update) error {
	header := styles.Unit.Render(fmt.Sprintf("#%d %s @%d", update.Unit.Seq, update.Unit.Reason, update.Unit.Position))
	detail := english.Plural(update.Spans, "span", "")
	if update.Failed > 0 {
		detail += fmt.Sprintf(", %d fell back", update.Failed)
	}
	detail += ", " + update.Elapsed.Round(time.Microsecond).String()

	_, err := fmt.Fprintf(w, "%s %s\n%s\n", header, styles.Dim.Render("("+detail+")"),
		styles.Delta.Render(strings.TrimRight(update.HTML, "\n")))
	return err
}
