package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// escapedDollar is how a backslash-escaped dollar is written out, so the
// math span finder never mistakes it for a delimiter.
const escapedDollar = "&#36;"

// Math passes math sources through goldmark untouched apart from HTML
// escaping. Without it, backslash escapes would eat "\\" and "\(", and
// emphasis would be applied inside formulas.
var Math = &mathExtension{}

type mathExtension struct{}

// Extend implements goldmark.Extender.
func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 501)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathRenderer{}, 501),
	))
}

// KindMathBlock is the node kind of MathBlock.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is display math occupying whole lines.
type MathBlock struct {
	ast.BaseBlock
	Opener string
	Closer string
	closed bool
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

// IsRaw keeps goldmark from parsing the lines as inline content.
func (n *MathBlock) IsRaw() bool {
	return true
}

// Closed reports whether the closing delimiter was seen.
func (n *MathBlock) Closed() bool {
	return n.closed
}

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Opener": n.Opener}, nil)
}

// KindMathInline is the node kind of MathInline.
var KindMathInline = ast.NewNodeKind("MathInline")

// MathInline is math delimited within a line.
type MathInline struct {
	ast.BaseInline
	Opener string
	Closer string
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind {
	return KindMathInline
}

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Opener": n.Opener}, nil)
}

type mathBlockParser struct{}

var blockDelimiters = [][2]string{
	{"$$", "$$"},
	{`\[`, `\]`},
}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathBlockParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}

	for _, delim := range blockDelimiters {
		opener, closer := delim[0], delim[1]
		if !bytes.HasPrefix(line[pos:], []byte(opener)) {
			continue
		}

		node := &MathBlock{Opener: opener, Closer: closer}
		restStart := pos + len(opener)
		rest := line[restStart:]

		if i := indexCloser(rest, closer); i >= 0 {
			// A closer followed by more text makes this a paragraph with
			// inline math.
			if len(util.TrimRightSpace(rest[i+len(closer):])) != 0 {
				return nil, parser.NoChildren
			}
			node.Lines().Append(text.NewSegment(segment.Start+restStart, segment.Start+restStart+i))
			node.closed = true
			return node, parser.NoChildren
		}

		if !util.IsBlank(rest) {
			node.Lines().Append(text.NewSegment(segment.Start+restStart, segment.Stop))
		}
		return node, parser.NoChildren
	}
	return nil, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	n, ok := node.(*MathBlock)
	if !ok || n.closed {
		return parser.Close
	}

	line, segment := reader.PeekLine()
	if i := indexCloser(line, n.Closer); i >= 0 {
		if i > 0 {
			n.Lines().Append(text.NewSegment(segment.Start, segment.Start+i))
		}
		n.closed = true
		// Text after the closer stays on the line and is parsed as a new
		// block once this one closes.
		rest := line[i+len(n.Closer):]
		if util.IsBlank(rest) {
			reader.Advance(segment.Len())
		} else {
			reader.Advance(i + len(n.Closer))
		}
		return parser.Close
	}

	n.Lines().Append(segment)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(_ ast.Node, _ text.Reader, _ parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathInlineParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 2 {
		return nil
	}

	if name := bareEnvironment(line); name != "" {
		return captureEnvironment(block, name)
	}

	var opener, closer string
	switch {
	case line[0] == '\\' && line[1] == '$':
		block.Advance(2)
		s := ast.NewString([]byte(escapedDollar))
		s.SetCode(true)
		return s
	case line[0] == '\\' && line[1] == '(':
		opener, closer = `\(`, `\)`
	case line[0] == '\\' && line[1] == '[':
		opener, closer = `\[`, `\]`
	case line[0] == '$' && line[1] == '$':
		opener, closer = "$$", "$$"
	case line[0] == '$':
		opener, closer = "$", "$"
	default:
		return nil
	}

	body := line[len(opener):]
	var stop int
	if opener == "$" {
		stop = closeDollar(body)
	} else {
		stop = indexCloser(body, closer)
	}
	if stop <= 0 || len(bytes.TrimSpace(body[:stop])) == 0 {
		return nil
	}

	node := &MathInline{Opener: opener, Closer: closer}
	start := segment.Start + len(opener)
	node.AppendChild(node, ast.NewRawTextSegment(text.NewSegment(start, start+stop)))
	block.Advance(len(opener) + stop + len(closer))
	return node
}

// bareEnvironments are display environments recognized without
// surrounding delimiters.
var bareEnvironments = []string{"aligned", "equation*"}

// bareEnvironment returns the environment line opens with, or "".
func bareEnvironment(line []byte) string {
	if !bytes.HasPrefix(line, []byte(`\begin{`)) {
		return ""
	}
	for _, name := range bareEnvironments {
		if bytes.HasPrefix(line, []byte(`\begin{`+name+`}`)) {
			return name
		}
	}
	return ""
}

// captureEnvironment consumes a bare environment through its matching
// \end, across lines when needed, so row separators and alignment marks
// reach the output untouched. It returns nil, leaving the reader where it
// was, when the environment is never closed.
func captureEnvironment(block text.Reader, name string) ast.Node {
	begin := []byte(`\begin{` + name + `}`)
	end := []byte(`\end{` + name + `}`)
	lineNum, pos := block.Position()

	node := &MathInline{}
	depth := 0
	for {
		line, segment := block.PeekLine()
		if line == nil {
			block.SetPosition(lineNum, pos)
			return nil
		}
		for i := 0; i < len(line); i++ {
			switch {
			case bytes.HasPrefix(line[i:], begin):
				depth++
				i += len(begin) - 1
			case bytes.HasPrefix(line[i:], end):
				depth--
				i += len(end) - 1
				if depth == 0 {
					stop := i + 1
					node.AppendChild(node, ast.NewRawTextSegment(segment.WithStop(segment.Start+stop)))
					block.Advance(stop)
					return node
				}
			case line[i] == '\\':
				i++
			}
		}
		node.AppendChild(node, ast.NewRawTextSegment(segment))
		block.AdvanceLine()
	}
}

// closeDollar returns the index of the '$' closing inline math in body,
// or -1. The closer is not escaped and not followed by a digit.
func closeDollar(body []byte) int {
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '$':
			if i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '9' {
				continue
			}
			return i
		}
	}
	return -1
}

// indexCloser returns the index of the first unescaped closer in line, or -1.
func indexCloser(line []byte, closer string) int {
	for i := 0; i+len(closer) <= len(line); i++ {
		if line[i] == '\\' && closer[0] != '\\' {
			i++
			continue
		}
		if bytes.HasPrefix(line[i:], []byte(closer)) {
			return i
		}
		if line[i] == '\\' {
			// Skip the escaped character so "\\]" is not read as a closer.
			i++
		}
	}
	return -1
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.renderBlock)
	reg.Register(KindMathInline, r.renderInline)
}

func (r *mathRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*MathBlock)
	if !ok {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="math-block">`)
	_, _ = w.WriteString(n.Opener)
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	if n.closed {
		_, _ = w.WriteString(n.Closer)
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *mathRenderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*MathInline)
	if !ok {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(n.Opener)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			_, _ = w.Write(util.EscapeHTML(t.Segment.Value(source)))
		}
	}
	_, _ = w.WriteString(n.Closer)
	return ast.WalkSkipChildren, nil
}
