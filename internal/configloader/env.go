package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yaklabco/gomdmath/pkg/config"
)

const envVarPrefix = "GOMDMATH_"

// envVar binds one GOMDMATH_* variable to the config key it overrides.
type envVar struct {
	suffix string
	key    string
	help   string
	set    func(cfg *config.Config, value string) error
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"FLAVOR", "flavor", "Markdown flavor: commonmark or gfm",
		setString(func(c *config.Config, v string) { c.Flavor = config.Flavor(v) })},
	{"RENDERER", "renderer", "Math back-end: client, katex or image",
		setString(func(c *config.Config, v string) { c.Renderer = v })},
	{"RENDERER_COMMAND", "renderer_command", "Command line of the katex back-end",
		setString(func(c *config.Config, v string) { c.RendererCommand = v })},
	{"RENDERER_TIMEOUT", "renderer_timeout", "Time limit per katex call (e.g. 5s)",
		setDuration(func(c *config.Config, v time.Duration) { c.RendererTimeout = v })},
	{"IMAGE_URL", "image_url", "URL prefix of the image back-end",
		setString(func(c *config.Config, v string) { c.ImageURL = v })},
	{"HIGHLIGHT", "highlight", "Code highlighting: none or tag",
		setString(func(c *config.Config, v string) { c.Highlight = v })},
	{"FLUSH_EVERY", "flush_every", "Streaming text flush cadence (0 disables)",
		setInt(func(c *config.Config, v int) { c.FlushEvery = &v })},
	{"OUTPUT_DIR", "output_dir", "Directory for rendered files",
		setString(func(c *config.Config, v string) { c.OutputDir = v })},
	{"JOBS", "jobs", "Number of parallel workers (0 = auto)",
		setInt(func(c *config.Config, v int) { c.Jobs = v })},
	{"FORMAT", "format", "Output format: text, table or json",
		setString(func(c *config.Config, v string) { c.Format = config.OutputFormat(v) })},
	{"IGNORE", "ignore", "Comma-separated list of ignore patterns",
		setString(func(c *config.Config, v string) { c.Ignore = splitList(v) })},
}

func setString(apply func(*config.Config, string)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		apply(cfg, value)
		return nil
	}
}

func setInt(apply func(*config.Config, int)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		apply(cfg, n)
		return nil
	}
}

func setDuration(apply func(*config.Config, time.Duration)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		apply(cfg, d)
		return nil
	}
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(value string) []string {
	return lo.Compact(lo.Map(strings.Split(value, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	}))
}

// LoadFromEnv applies GOMDMATH_* overrides to cfg. Unset and empty
// variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, v := range envVars {
		name := envVarPrefix + v.suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := v.set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// EnvVarName returns the variable overriding a config key, or "".
func EnvVarName(key string) string {
	v, ok := lo.Find(envVars, func(v envVar) bool { return v.key == key })
	if !ok {
		return ""
	}
	return envVarPrefix + v.suffix
}

// ListEnvVars maps every supported variable to its description.
func ListEnvVars() map[string]string {
	return lo.SliceToMap(envVars, func(v envVar) (string, string) {
		return envVarPrefix + v.suffix, v.help
	})
}
