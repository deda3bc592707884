package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/configloader"
	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	print  bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gomdmath configuration file",
		Long: `Create a new .gomdmath.yml configuration file in the current directory
with sensible defaults. The file can be customized to pick a math renderer,
add macros, and tune the streaming flush cadence.

Examples:
  gomdmath init                        Create minimal .gomdmath.yml
  gomdmath init --full                 Document every option
  gomdmath init --output custom.yml    Write to a custom file path
  gomdmath init --print --format json  Print the defaults as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every option documented")
	cmd.Flags().BoolVar(&flags.print, "print", false, "Print the template to stdout instead of writing a file")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Template format with --print: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigName, "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrInvalidUsage, flags.format)
	}
	if flags.format == "json" && !flags.print {
		return fmt.Errorf("%w: json templates can only be printed; config files are YAML", ErrInvalidUsage)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if flags.print {
		if _, err := cmd.OutOrStdout().Write(content); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		return nil
	}

	if !configloader.IsYAMLConfig(flags.output) {
		return fmt.Errorf("%w: %s: config files must end in .yml or .yaml", ErrInvalidUsage, flags.output)
	}

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := configloader.WriteConfig(commandContext(cmd), absPath, content, flags.force); err != nil {
		return err
	}

	logger := logging.NewInteractive()
	logger.Info("created configuration file", logging.FieldPath, flags.output)
	if !flags.full {
		logger.Info("run 'gomdmath init --full --print' to see every option")
	}
	logger.Info("run 'gomdmath macros' to see the macro table")

	return nil
}
