package configloader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/highlight"
	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/mathrender"
)

// ValidationError is one invalid configuration value.
type ValidationError struct {
	// Field is the config key, e.g. "macros.\RR" or "ignore[2]".
	Field   string
	Value   any
	Message string

	// FilePath is the config file the value came from, if known.
	FilePath string
}

func (e *ValidationError) Error() string {
	msg := e.Field + ": " + e.Message
	if e.FilePath != "" {
		msg = e.FilePath + ": " + msg
	}
	return msg
}

// ValidationResult collects the findings of Validate.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all errors, or returns nil when the configuration is valid.
func (r *ValidationResult) Err() error {
	return errors.Join(lo.Map(r.Errors, func(e ValidationError, _ int) error {
		return &e
	})...)
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// oneOf fails field unless value is empty or listed in allowed.
func (r *ValidationResult) oneOf(field, value string, allowed []string) {
	if value != "" && !lo.Contains(allowed, value) {
		r.fail(field, value, "invalid %s %q; must be one of: %s", field, value, strings.Join(allowed, ", "))
	}
}

// Validate checks a configuration for errors and warnings. Empty values are
// accepted since layered files leave unset fields empty.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	result.oneOf("flavor", string(cfg.Flavor), []string{string(config.FlavorCommonMark), string(config.FlavorGFM)})
	result.oneOf("renderer", strings.ToLower(cfg.Renderer), mathrender.Names())
	result.oneOf("highlight", cfg.Highlight, []string{highlight.NameNone, highlight.NameTag})
	result.oneOf("format", string(cfg.Format),
		[]string{string(config.FormatText), string(config.FormatTable), string(config.FormatJSON)})

	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "must be >= 0 (0 means auto)")
	}
	if cfg.FlushEvery != nil && *cfg.FlushEvery < 0 {
		result.fail("flush_every", *cfg.FlushEvery, "must be >= 0 (0 disables cadence flushes)")
	}
	if cfg.RendererTimeout < 0 {
		result.fail("renderer_timeout", cfg.RendererTimeout, "must not be negative")
	}

	for name, expansion := range cfg.Macros {
		if _, err := macros.Parse(map[string]string{name: expansion}); err != nil {
			result.fail("macros."+name, name, "%v", err)
		}
	}
	for key := range cfg.Passthrough {
		if !mathrender.ValidPassthroughKey(key) {
			result.fail("passthrough."+key, key, "option names use lowercase letters and hyphens")
		}
	}
	for i, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	if strings.EqualFold(cfg.Renderer, mathrender.NameKaTeX) && cfg.RendererCommand == "" {
		result.warn("renderer_command", "not set; using "+mathrender.DefaultKaTeXCommand)
	}

	return result
}

// ValidateWithFile validates cfg and attributes every finding to filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
