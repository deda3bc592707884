package render

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Comparison is one pipeline's outcome in Compare.
type Comparison struct {
	Name       string
	HTML       string
	Spans      int
	Failed     int
	Iterations int
	Mean       time.Duration
	Total      time.Duration
}

// Compare renders raw through every pipeline concurrently, iterations times
// each, and reports the last output and the mean duration per pipeline.
// Results are in the order of pipelines.
func Compare(ctx context.Context, raw string, iterations int, pipelines ...*Pipeline) ([]Comparison, error) {
	if iterations < 1 {
		iterations = 1
	}

	results := make([]Comparison, len(pipelines))
	g, ctx := errgroup.WithContext(ctx)

	for i, pipeline := range pipelines {
		g.Go(func() error {
			cmp := Comparison{Name: pipeline.Name(), Iterations: iterations}
			for range iterations {
				start := time.Now()
				result, err := pipeline.Render(ctx, raw, nil)
				if err != nil {
					return fmt.Errorf("%s: %w", pipeline.Name(), err)
				}
				cmp.Total += time.Since(start)
				cmp.HTML = result.HTML
				cmp.Spans = result.Spans
				cmp.Failed = result.Failed
			}
			cmp.Mean = cmp.Total / time.Duration(iterations)
			results[i] = cmp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
