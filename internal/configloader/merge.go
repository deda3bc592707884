package configloader

import (
	"maps"

	"github.com/yaklabco/gomdmath/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointers: override overwrites base if non-nil (flush_every: 0 is kept)
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Renderer != "" {
		result.Renderer = override.Renderer
	}
	if override.RendererCommand != "" {
		result.RendererCommand = override.RendererCommand
	}
	if override.RendererTimeout != 0 {
		result.RendererTimeout = override.RendererTimeout
	}
	if override.ImageURL != "" {
		result.ImageURL = override.ImageURL
	}
	if override.Highlight != "" {
		result.Highlight = override.Highlight
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.FlushEvery != nil {
		flushEvery := *override.FlushEvery
		result.FlushEvery = &flushEvery
	}

	// Booleans can only be switched on by a higher layer.
	if override.Stdout {
		result.Stdout = true
	}
	if override.Force {
		result.Force = true
	}

	result.Macros = mergeStrings(base.Macros, override.Macros)
	result.Passthrough = mergeStrings(base.Passthrough, override.Passthrough)

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

// mergeStrings performs a deep merge of string maps into a fresh map.
func mergeStrings(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]string, len(base)+len(override))
	maps.Copy(result, base)
	maps.Copy(result, override)
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
