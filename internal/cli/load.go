package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdmath/internal/configloader"
	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/render"
)

// ErrInvalidConfig wraps configuration loading and validation failures.
var ErrInvalidConfig = errors.New("failed to load configuration")

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves the layered configuration with cliCfg on top.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*configloader.LoadResult, error) {
	logger := commandLogger(cmd)

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldRenderer, cfg.Renderer,
		logging.FieldHighlight, cfg.Highlight,
		logging.FieldFlushEvery, cfg.StreamFlushEvery(),
		logging.FieldJobs, cfg.Jobs,
	)

	return loadResult, nil
}

// loadPipeline loads the configuration and builds the render pipeline.
func loadPipeline(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, *render.Pipeline, error) {
	loadResult, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := render.FromConfig(loadResult.Config, commandLogger(cmd))
	if err != nil {
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return loadResult.Config, pipeline, nil
}

// commandLogger returns the logger the root command attached to cmd's context.
func commandLogger(cmd *cobra.Command) *log.Logger {
	return logging.FromContext(commandContext(cmd))
}

// colorMode reads the persistent --color flag.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
