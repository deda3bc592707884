package markdown_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdmath/pkg/markdown"
)

func TestNew_Flavor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, markdown.FlavorGFM, markdown.New("gfm").Flavor())
	assert.Equal(t, markdown.FlavorCommonMark, markdown.New("commonmark").Flavor())
	assert.Equal(t, markdown.FlavorCommonMark, markdown.New("bogus").Flavor())
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flavor   string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and paragraph",
			input:    "# Title\n\nHello *world*.\n",
			contains: []string{"<h1>Title</h1>", "<p>Hello <em>world</em>.</p>"},
		},
		{
			name:     "inline math is verbatim",
			input:    "Energy $E = m*c*^2$ here.\n",
			contains: []string{"$E = m*c*^2$"},
			excludes: []string{"<em>"},
		},
		{
			name:     "inline math is escaped",
			input:    "Order $a < b$.\n",
			contains: []string{"$a &lt; b$"},
		},
		{
			name:     "paren delimiters keep backslashes",
			input:    `Inline \(x_1\) and \[y\].` + "\n",
			contains: []string{`\(x_1\)`, `\[y\]`},
		},
		{
			name:     "display block keeps row separators",
			input:    "$$\na &= b \\\\\nc &= d\n$$\n",
			contains: []string{"<div class=\"math-block\">$$a &amp;= b \\\\\nc &amp;= d\n$$</div>"},
		},
		{
			name:     "single line display block",
			input:    "$$x = 1$$\n",
			contains: []string{`<div class="math-block">$$x = 1$$</div>`},
		},
		{
			name:     "bracket display block",
			input:    "\\[\n\\frac{a}{b}\n\\]\n",
			contains: []string{"<div class=\"math-block\">\\[\\frac{a}{b}\n\\]</div>"},
		},
		{
			name:     "text after display closer is kept",
			input:    "$$\na+b\n$$ tail text\n",
			contains: []string{"<div class=\"math-block\">$$a+b\n$$</div>", "<p>tail text</p>"},
		},
		{
			name:     "text after bracket closer is kept",
			input:    "\\[\nx\n\\]  and more\n",
			contains: []string{"<div class=\"math-block\">\\[x\n\\]</div>", "<p>and more</p>"},
		},
		{
			name:     "bare aligned keeps row separators",
			input:    "\\begin{aligned} a &= b \\\\ c &= d \\end{aligned}\n",
			contains: []string{`<p>\begin{aligned} a &amp;= b \\ c &amp;= d \end{aligned}</p>`},
		},
		{
			name:     "bare aligned across lines",
			input:    "Rows:\n\\begin{aligned}\na &= b \\\\\nc &= d\n\\end{aligned}\n",
			contains: []string{"\\begin{aligned}\na &amp;= b \\\\\nc &amp;= d\n\\end{aligned}"},
		},
		{
			name:     "bare equation star keeps row separators",
			input:    "Mass \\begin{equation*} E = m_1 \\\\ F = m_2 \\end{equation*} done\n",
			contains: []string{`\begin{equation*} E = m_1 \\ F = m_2 \end{equation*} done`},
			excludes: []string{"<em>"},
		},
		{
			name:     "unclosed environment is plain text",
			input:    "\\begin{aligned} a\n",
			contains: []string{`<p>\begin{aligned} a</p>`},
		},
		{
			name:     "display math mid paragraph stays inline",
			input:    "see $$x^2$$ here\n",
			contains: []string{"<p>see $$x^2$$ here</p>"},
		},
		{
			name:     "escaped dollar cannot open math",
			input:    `Costs \$5 or \$x\$.` + "\n",
			contains: []string{"Costs &#36;5 or &#36;x&#36;."},
		},
		{
			name:     "currency stays text",
			input:    "From $5 to $10.\n",
			contains: []string{"<p>From $5 to $10.</p>"},
		},
		{
			name:     "fenced code keeps its language",
			input:    "```go\nx := 1\n```\n",
			contains: []string{`<pre><code class="language-go">x := 1`},
		},
		{
			name:     "gfm tables",
			flavor:   markdown.FlavorGFM,
			input:    "| a | b |\n| - | - |\n| $x$ | 2 |\n",
			contains: []string{"<table>", "<td>$x$</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := markdown.New(tt.flavor).Render(context.Background(), tt.input)
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

func TestEngine_RenderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := markdown.New("").Render(ctx, "text")
	require.ErrorIs(t, err, context.Canceled)
}
