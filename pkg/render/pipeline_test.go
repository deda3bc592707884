package render_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/markdown"
	"github.com/yaklabco/gomdmath/pkg/mathrender"
	"github.com/yaklabco/gomdmath/pkg/render"
)

type brokenEngine struct{}

func (brokenEngine) Render(context.Context, string) (string, error) {
	return "", errors.New("engine down")
}

func clientPipeline(t *testing.T) *render.Pipeline {
	t.Helper()

	p, err := render.FromConfig(config.NewConfig(), nil)
	require.NoError(t, err)
	return p
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	p := clientPipeline(t)
	assert.Equal(t, mathrender.NameClient, p.Name())

	cfg := config.NewConfig()
	cfg.Renderer = "mathjax"
	_, err := render.FromConfig(cfg, nil)
	require.ErrorIs(t, err, mathrender.ErrUnknownRenderer)

	cfg = config.NewConfig()
	cfg.Macros = map[string]string{"9x": "y"}
	_, err = render.FromConfig(cfg, nil)
	require.Error(t, err)
}

func TestMacroTable(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Macros = map[string]string{`\vect`: `\mathbf{#1}`, "RR": `\mathbb{R}`}

	table, err := render.MacroTable(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, table[`\vect`].Arity)
	assert.Equal(t, `\mathbb{R}`, table[`\RR`].Expansion)
	assert.Contains(t, table, `\grad`)
}

func TestNewPipeline_RequiresNormalizer(t *testing.T) {
	t.Parallel()

	_, err := render.NewPipeline(render.PipelineOptions{})
	require.ErrorIs(t, err, render.ErrNoRenderer)
}

func TestPipeline_RenderDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "inline math",
			input:    "Energy $E=mc^2$.\n",
			contains: []string{`<p>Energy <span class="math-rendered math-inline"><code class="language-math">E=mc^{2}</code></span>.</p>`},
		},
		{
			name:  "display block",
			input: "$$\na+b\n$$\n",
			contains: []string{
				`<div class="math-block"><span class="math-rendered math-display" style="display:block"><code class="language-math display">a+b</code></span></div>`,
			},
		},
		{
			name:     "macros are expanded",
			input:    `Field $\grad f$` + "\n",
			contains: []string{`<code class="language-math">\nabla f</code>`},
		},
		{
			name:     "emphasis inside math is not parsed",
			input:    "$a*b*c$\n",
			contains: []string{"a*b*c"},
			excludes: []string{"<em>"},
		},
		{
			name:     "unbalanced braces fall back",
			input:    "$\\frac{a}{b$\n",
			contains: []string{`<span class="math-fallback math-inline">\frac{a}{b</span>`},
		},
		{
			name:     "untagged code gets a language",
			input:    "```\npackage main\n```\n",
			contains: []string{`<pre><code class="language-go">package main`},
		},
		{
			name:     "escaped dollars stay literal",
			input:    `Costs \$5 and \$6.` + "\n",
			contains: []string{"Costs &#36;5 and &#36;6."},
			excludes: []string{"math-rendered"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := clientPipeline(t).RenderDocument(context.Background(), tt.input)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestPipeline_MathThroughMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		calls    []call
		contains []string
	}{
		{
			name:     "bare aligned keeps row separators",
			input:    "\\begin{aligned} a &= b \\\\ c &= d \\end{aligned}\n",
			calls:    []call{{body: `\begin{aligned}a &= b \\ c &= d\end{aligned}`, display: true}},
			contains: []string{`<p><span class="math-rendered math-display" style="display:block">`},
		},
		{
			name:     "bare aligned across lines",
			input:    "Rows:\n\\begin{aligned}\na &= b \\\\\nc &= d\n\\end{aligned}\nafter\n",
			calls:    []call{{body: `\begin{aligned}a &= b \\ c &= d\end{aligned}`, display: true}},
			contains: []string{"<p>Rows:\n<span", "</span>\nafter</p>"},
		},
		{
			name:  "bare equation star becomes aligned rows",
			input: "\\begin{equation*} x = 1 \\\\ y = 2 \\end{equation*}\n",
			calls: []call{{body: `\begin{aligned}x = 1 \\ y = 2\end{aligned}`, display: true}},
		},
		{
			name:     "text after a display block closer",
			input:    "$$\na+b\n$$ tail text\n",
			calls:    []call{{body: "a+b", display: true}},
			contains: []string{"<p>tail text</p>"},
		},
		{
			name:     "text after a bracket block closer",
			input:    "\\[\nx\n\\] after\n",
			calls:    []call{{body: "x", display: true}},
			contains: []string{"<p>after</p>"},
		},
		{
			name:  "display math mid paragraph",
			input: "see $$x^2$$ here\n",
			calls: []call{{body: "x^{2}", display: true}},
			contains: []string{
				`<p>see <span class="math-rendered math-display" style="display:block"><m>x^{2}</m></span> here</p>`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &recorder{}
			p, err := render.NewPipeline(render.PipelineOptions{
				Engine:     markdown.New(markdown.FlavorGFM),
				Normalizer: newNormalizer(t, r, nil),
			})
			require.NoError(t, err)

			got, err := p.RenderDocument(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.calls, r.calls)
			assert.NotContains(t, got, "<div class=\"math-rendered")
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestPipeline_EngineErrorIsWrapped(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t, &recorder{}, nil)
	p, err := render.NewPipeline(render.PipelineOptions{Engine: brokenEngine{}, Normalizer: n})
	require.NoError(t, err)
	assert.Equal(t, "recorder", p.Name())

	_, err = p.RenderDocument(context.Background(), "x")
	require.ErrorContains(t, err, "markdown: engine down")
}

func TestCompare(t *testing.T) {
	t.Parallel()

	client := clientPipeline(t)
	cfg := config.NewConfig()
	cfg.Renderer = mathrender.NameImage
	image, err := render.FromConfig(cfg, nil)
	require.NoError(t, err)

	results, err := render.Compare(context.Background(), "$x^2$\n", 3, client, image)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, mathrender.NameClient, results[0].Name)
	assert.Equal(t, mathrender.NameImage, results[1].Name)
	for _, result := range results {
		assert.Equal(t, 3, result.Iterations)
		assert.Equal(t, 1, result.Spans)
		assert.Zero(t, result.Failed)
		assert.GreaterOrEqual(t, result.Total, result.Mean)
		assert.GreaterOrEqual(t, result.Mean, time.Duration(0))
	}
	assert.Contains(t, results[0].HTML, `<code class="language-math">`)
	assert.Contains(t, results[1].HTML, `<img class="math-image"`)
}

func TestCompare_PropagatesErrors(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t, &recorder{}, nil)
	broken, err := render.NewPipeline(render.PipelineOptions{Engine: brokenEngine{}, Normalizer: n})
	require.NoError(t, err)

	_, err = render.Compare(context.Background(), "x", 0, clientPipeline(t), broken)
	require.Error(t, err)
}
