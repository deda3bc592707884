// Package configloader resolves the gomdmath configuration from defaults,
// system, user and project files, GOMDMATH_* variables and command-line
// flags, in increasing order of precedence.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/lo"

	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/fsutil"
)

// ProjectConfigName is the preferred project configuration file name and
// the default output of "gomdmath init".
const ProjectConfigName = ".gomdmath.yml"

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Empty means
	// the process working directory.
	WorkingDir string

	// ExplicitPath is a config file named with --config. It is loaded
	// after the discovered files.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds flag values. Non-zero fields win over every file.
	CLIConfig *config.Config
}

// LoadResult is the resolved configuration and where it came from.
type LoadResult struct {
	Config *config.Config
	Paths  *ConfigPaths

	// LoadedFrom lists the files that were merged, lowest precedence first.
	LoadedFrom []string

	// Warnings are non-fatal findings on the merged configuration.
	Warnings []string
}

// configLayer is one file in the precedence chain.
type configLayer struct {
	name string
	path string
	skip bool
}

// Load merges defaults, configuration files, environment and CLI flags.
// Each file is validated on its own so errors name the file they came
// from; the merged result is validated again.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	if opts.ExplicitPath != "" && !IsYAMLConfig(opts.ExplicitPath) {
		return nil, fmt.Errorf("config %s: only .yaml and .yml files are supported", opts.ExplicitPath)
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Explicit = opts.ExplicitPath

	layers := []configLayer{
		{name: "system", path: paths.System, skip: opts.IgnoreSystemConfig},
		{name: "user", path: paths.User, skip: opts.IgnoreUserConfig},
		{name: "project", path: paths.Project, skip: opts.IgnoreProjectConfig},
		{name: "explicit", path: paths.Explicit},
	}
	layers = lo.Filter(layers, func(layer configLayer, _ int) bool {
		return !layer.skip && layer.path != ""
	})

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()
	for _, layer := range layers {
		fileCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		if err := ValidateWithFile(fileCfg, layer.path).Err(); err != nil {
			return nil, err
		}
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if err := validation.Err(); err != nil {
		return nil, err
	}
	result.Warnings = lo.Map(validation.Warnings, func(w ValidationError, _ int) string {
		return w.Error()
	})
	result.Config = cfg
	return result, nil
}

func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig writes content to path atomically, refusing to replace an
// existing file unless force is set.
func WriteConfig(ctx context.Context, path string, content []byte, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
