package mathrender

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultKaTeXCommand is the katex executable used when none is configured.
const DefaultKaTeXCommand = "katex"

// KaTeX renders through the katex command line tool. The body is written
// to its standard input and the HTML is read from its standard output.
type KaTeX struct {
	command []string
	timeout time.Duration
}

// NewKaTeX creates a KaTeX renderer. An empty command uses
// DefaultKaTeXCommand.
func NewKaTeX(command string, timeout time.Duration) *KaTeX {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{DefaultKaTeXCommand}
	}
	return &KaTeX{command: fields, timeout: timeout}
}

// Name implements Renderer.
func (k *KaTeX) Name() string {
	return NameKaTeX
}

// Args returns the command line arguments used for one render call.
func (k *KaTeX) Args(opts Options) []string {
	args := append([]string(nil), k.command[1:]...)
	if opts.DisplayMode {
		args = append(args, "--display-mode")
	}
	for _, flag := range opts.Macros.Flags() {
		args = append(args, "--macro", flag)
	}
	for _, key := range opts.passthroughKeys() {
		if value := opts.Passthrough[key]; value != "" {
			args = append(args, "--"+key+"="+value)
		} else {
			args = append(args, "--"+key)
		}
	}
	return args
}

// Render implements Renderer.
func (k *KaTeX) Render(ctx context.Context, body string, opts Options) (string, error) {
	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, k.command[0], k.Args(opts)...)
	cmd.Stdin = strings.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrRender, k.command[0], msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}
