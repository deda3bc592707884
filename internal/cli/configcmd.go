package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/configloader"
	"github.com/yaklabco/gomdmath/internal/ui/pretty"
)

func newConfigCommand() *cobra.Command {
	var env bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration that results from merging the system, user,
project and --config files with GOMDMATH_* environment variables.

Examples:
  gomdmath config
  gomdmath config --env     List the supported environment variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env {
				return runConfigEnv(cmd)
			}
			return runConfigShow(cmd)
		},
	}

	cmd.Flags().BoolVar(&env, "env", false, "list supported environment variables")

	return cmd
}

func runConfigShow(cmd *cobra.Command) error {
	loadResult, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	header := "# Effective gomdmath configuration\n# Sources: defaults"
	if len(loadResult.LoadedFrom) > 0 {
		header += ", " + strings.Join(loadResult.LoadedFrom, ", ")
	}

	data, err := loadResult.Config.ToYAMLWithHeader(header + "\n")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigEnv(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))

	vars := configloader.ListEnvVars()
	names := lo.Keys(vars)
	slices.Sort(names)

	width := lo.Max(lo.Map(names, func(name string, _ int) int { return len(name) }))
	for _, name := range names {
		fmt.Fprintf(out, "%s  %s\n", styles.Bold.Render(fmt.Sprintf("%-*s", width, name)), vars[name])
	}
	return nil
}
