package render_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/mathrender"
	"github.com/yaklabco/gomdmath/pkg/mathspan"
	"github.com/yaklabco/gomdmath/pkg/render"
)

var errBad = errors.New("cannot typeset")

type call struct {
	body    string
	display bool
}

// recorder is a renderer that echoes its input and fails on "bad".
type recorder struct {
	mu    sync.Mutex
	calls []call
	opts  []mathrender.Options
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Render(_ context.Context, body string, opts mathrender.Options) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{body: body, display: opts.DisplayMode})
	r.opts = append(r.opts, opts)
	r.mu.Unlock()

	if body == "bad" {
		return "", errBad
	}
	return "<m>" + html.EscapeString(body) + "</m>", nil
}

func newNormalizer(t *testing.T, r mathrender.Renderer, onError render.ErrorHandler) *render.Normalizer {
	t.Helper()

	n, err := render.NewNormalizer(render.NormalizerOptions{Renderer: r, OnError: onError})
	require.NoError(t, err)
	return n
}

func TestNewNormalizer_RequiresRenderer(t *testing.T) {
	t.Parallel()

	_, err := render.NewNormalizer(render.NormalizerOptions{})
	require.ErrorIs(t, err, render.ErrNoRenderer)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "inline span",
			doc:  "<p>Energy $E=mc^2$ here.</p>",
			want: `<p>Energy <span class="math-rendered math-inline"><m>E=mc^{2}</m></span> here.</p>`,
		},
		{
			name: "display span",
			doc:  `<div class="math-block">$$a+b$$</div>`,
			want: `<div class="math-block"><span class="math-rendered math-display" style="display:block"><m>a+b</m></span></div>`,
		},
		{
			name: "no math",
			doc:  "<p>From $5 to $10.</p>",
			want: "<p>From $5 to $10.</p>",
		},
		{
			name: "code is left alone",
			doc:  "<pre><code>echo $HOME $PATH</code></pre>",
			want: "<pre><code>echo $HOME $PATH</code></pre>",
		},
		{
			name: "citations are not math",
			doc:  "<p>see [1] and [2]</p>",
			want: "<p>see [1] and [2]</p>",
		},
		{
			name: "fragments only",
			doc:  `<p><span class="math-rendered math-inline"><m>x</m></span></p>`,
			want: `<p><span class="math-rendered math-inline"><m>x</m></span></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := newNormalizer(t, &recorder{}, nil)
			assert.Equal(t, tt.want, n.Normalize(context.Background(), tt.doc, nil))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	docs := []string{
		"<p>Inline $x_i$ and \\(y^2\\) then</p><div class=\"math-block\">$$\\sum_i x_i$$</div>",
		"<p>[x^2 + y^2 = z^2]</p>",
		"<p>$bad$ and $ok$</p>",
	}

	for _, doc := range docs {
		n := newNormalizer(t, &recorder{}, nil)
		once := n.Normalize(context.Background(), doc, nil)
		twice := n.Normalize(context.Background(), once, nil)
		assert.Equal(t, once, twice, doc)
	}
}

func TestNormalize_FailingRendererFallsBack(t *testing.T) {
	t.Parallel()

	var (
		failed []mathspan.Span
		errs   []error
	)
	n := newNormalizer(t, &recorder{}, func(span mathspan.Span, err error) {
		failed = append(failed, span)
		errs = append(errs, err)
	})

	result := n.Process(context.Background(), "<p>$bad$</p>", nil)

	assert.Equal(t, `<p><span class="math-fallback math-inline">bad</span></p>`, result.HTML)
	assert.Equal(t, 1, result.Spans)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].CanonicalBody)
	require.ErrorIs(t, errs[0], errBad)
}

func TestNormalize_DisplayFallbackIsCentered(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t, &recorder{}, nil)
	got := n.Normalize(context.Background(), "<p>$$bad$$</p>", nil)

	assert.Equal(t, `<p><span class="math-fallback math-display" style="display:block;text-align:center">bad</span></p>`, got)
}

func TestNormalize_AlignedIsOneDisplayCall(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	n := newNormalizer(t, r, nil)
	doc := "<p>\\begin{aligned}\n a &amp;= b \\\\\n c &amp;= d\n\\end{aligned}</p>"

	got := n.Normalize(context.Background(), doc, nil)

	require.Len(t, r.calls, 1)
	assert.True(t, r.calls[0].display)
	assert.Equal(t, `\begin{aligned}a &= b \\ c &= d\end{aligned}`, r.calls[0].body)
	assert.Contains(t, got, `class="math-rendered math-display"`)
	assert.NotContains(t, got, `\end{aligned}</p>`)
}

func TestNormalize_BracketMath(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	n := newNormalizer(t, r, nil)

	n.Normalize(context.Background(), "<p>[x^2 + y^2 = z^2]</p>", nil)

	require.Len(t, r.calls, 1)
	assert.Equal(t, call{body: "x^{2} + y^{2} = z^{2}", display: true}, r.calls[0])
}

func TestNormalize_MacroOverrides(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	n := newNormalizer(t, r, nil)
	overrides := macros.Table{`\foo`: {Expansion: "y"}}

	n.Normalize(context.Background(), "<p>$x$</p>", overrides)
	n.Normalize(context.Background(), "<p>$x$</p>", nil)

	require.Len(t, r.opts, 2)
	assert.Contains(t, r.opts[0].Macros, `\foo`)
	assert.Contains(t, r.opts[0].Macros, `\R`)
	assert.NotContains(t, r.opts[1].Macros, `\foo`)
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `<span class="math-rendered math-inline">f</span>`, render.Wrap("f", false))
	assert.Equal(t, `<span class="math-rendered math-display" style="display:block">f</span>`, render.Wrap("f", true))
}
