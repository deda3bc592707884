// Package cli provides the Cobra command structure for gomdmath.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gomdmath command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gomdmath",
		Short: "Render Markdown with LaTeX math, in batches or as a live stream",
		Long: `gomdmath renders Markdown documents containing LaTeX math to HTML.

Math written as $...$, $$...$$, \(...\) or \[...\] is found in the rendered
document, cleaned up and handed to a math renderer (KaTeX, a client-side
passthrough, or an image service). Spans that fail to render fall back to
their literal source instead of breaking the page.

Documents can be rendered in batches from disk, or fed in as a stream that
arrives a few characters at a time, as it would from a chat model; partial
formulas are held back until they close.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logging.Default().WithPrefix(cmd.Name())))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newStreamCommand())
	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newBenchCommand())
	rootCmd.AddCommand(newMacrosCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	applyHelp(rootCmd, color, os.Stdout)

	return rootCmd
}
