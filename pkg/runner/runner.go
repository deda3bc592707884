package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/fsutil"
	"github.com/yaklabco/gomdmath/pkg/render"
)

// Runner renders discovered files through a render.Pipeline.
type Runner struct {
	// Pipeline renders each file. It is shared by all workers.
	Pipeline *render.Pipeline

	// Logger receives per-file debug output. Nil discards.
	Logger *log.Logger
}

// New creates a new Runner with the given pipeline.
func New(pipeline *render.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files under opts.Paths and renders them with a pool of
// workers. Outcomes are returned in path order whatever order the workers
// finish in.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	outDir := ""
	if opts.OutputDir != "" {
		outDir = absolute(workDir, opts.OutputDir)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				outcome := r.renderFile(ctx, path, fsutil.OutputPath(path, workDir, outDir, OutputExtension), opts)
				logger.Debug("file rendered",
					logging.FieldPath, path,
					logging.FieldSpans, outcome.Spans,
					logging.FieldFailed, outcome.Failed,
					logging.FieldElapsed, outcome.Duration,
				)
				select {
				case <-ctx.Done():
					return
				case outCh <- outcome:
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}
	result.Stats.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// renderFile reads, renders and writes one source file.
func (r *Runner) renderFile(ctx context.Context, path, output string, opts Options) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	start := time.Now()
	rendered, err := r.Pipeline.Render(ctx, string(content), nil)
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Error = fmt.Errorf("render %s: %w", path, err)
		return outcome
	}
	outcome.Spans = rendered.Spans
	outcome.Failed = rendered.Failed
	outcome.Bytes = len(rendered.HTML)

	if opts.NoWrite {
		outcome.HTML = rendered.HTML
		return outcome
	}

	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	if modified {
		outcome.Skipped = true
		return outcome
	}

	outcome.Output = output
	if opts.Force {
		err = os.MkdirAll(filepath.Dir(output), fsutil.DefaultDirMode)
		if err == nil {
			err = fsutil.WriteAtomic(ctx, output, []byte(rendered.HTML), 0)
		}
		outcome.Written = err == nil
	} else {
		outcome.Written, err = fsutil.WriteAtomicIfChanged(ctx, output, []byte(rendered.HTML), 0)
	}
	if err != nil {
		outcome.Error = fmt.Errorf("write %s: %w", output, err)
	}
	return outcome
}
