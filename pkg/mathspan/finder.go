package mathspan

import (
	"sort"
	"strings"
)

// Environments that are found without surrounding delimiters.
var bareEnvironments = []string{"aligned", "equation*"}

// Find returns the math spans in an HTML document, ordered by offset and
// non-overlapping. Only character data outside protected elements is
// searched, and no span crosses a tag.
func Find(doc string) []Span {
	var spans []Span
	for _, run := range TextRuns(doc) {
		spans = append(spans, FindText(doc[run.Start:run.End], run.Start)...)
	}
	return spans
}

// FindText returns the math spans of a single run of text. Offsets are
// shifted by base.
//
// Spans are claimed in precedence order: display delimiters, bare
// environments, inline delimiters, then bracket spans. A candidate that
// overlaps an already claimed span is dropped.
func FindText(text string, base int) []Span {
	if !mayContainMath(text) {
		return nil
	}

	f := &finder{text: text, claimed: make([]bool, len(text))}
	f.findDisplay()
	f.findEnvironments()
	f.findInline()
	f.findBrackets()

	sort.Slice(f.spans, func(i, j int) bool {
		return f.spans[i].Start < f.spans[j].Start
	})
	for i := range f.spans {
		f.spans[i].Start += base
		f.spans[i].End += base
	}
	return f.spans
}

func mayContainMath(text string) bool {
	return strings.ContainsAny(text, `$\[`)
}

type finder struct {
	text    string
	claimed []bool
	spans   []Span
}

// claim records a span if [start, end) is free.
func (f *finder) claim(span Span) bool {
	for i := span.Start; i < span.End; i++ {
		if f.claimed[i] {
			return false
		}
	}
	for i := span.Start; i < span.End; i++ {
		f.claimed[i] = true
	}
	span.Raw = f.text[span.Start:span.End]
	f.spans = append(f.spans, span)
	return true
}

func (f *finder) free(i int) bool {
	return i < len(f.claimed) && !f.claimed[i]
}

func (f *finder) findDisplay() {
	text := f.text
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "$$") && !escaped(text, i):
			end := indexUnescaped(text, i+2, "$$")
			if end < 0 || strings.TrimSpace(text[i+2:end]) == "" {
				i += 2
				continue
			}
			f.claim(Span{Style: StyleDisplay, Start: i, End: end + 2, RawBody: text[i+2 : end]})
			i = end + 2

		case strings.HasPrefix(text[i:], `\[`) && !escaped(text, i):
			end := indexUnescaped(text, i+2, `\]`)
			if end < 0 || strings.TrimSpace(text[i+2:end]) == "" {
				i += 2
				continue
			}
			f.claim(Span{Style: StyleDisplayBracket, Start: i, End: end + 2, RawBody: text[i+2 : end]})
			i = end + 2

		default:
			i++
		}
	}
}

func (f *finder) findEnvironments() {
	text := f.text
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' || !f.free(i) || escaped(text, i) {
			continue
		}
		for _, name := range bareEnvironments {
			if !strings.HasPrefix(text[i:], beginTag(name)) {
				continue
			}
			end := matchEnvironment(text, i, name)
			if end < 0 {
				continue
			}
			if f.claim(Span{
				Style:       StyleEnvironment,
				Start:       i,
				End:         end,
				RawBody:     text[i:end],
				Environment: name,
			}) {
				i = end - 1
			}
			break
		}
	}
}

func (f *finder) findInline() {
	text := f.text
	for i := 0; i < len(text); i++ {
		if !f.free(i) || escaped(text, i) {
			continue
		}
		switch {
		case text[i] == '$':
			if i+1 < len(text) && text[i+1] == '$' {
				i++
				continue
			}
			end := closeInlineDollar(text, i+1)
			if end < 0 {
				continue
			}
			if f.claim(Span{Style: StyleInline, Start: i, End: end + 1, RawBody: text[i+1 : end]}) {
				i = end
			}

		case strings.HasPrefix(text[i:], `\(`):
			end := indexUnescaped(text, i+2, `\)`)
			if end < 0 || strings.TrimSpace(text[i+2:end]) == "" {
				continue
			}
			if f.claim(Span{Style: StyleInlineParen, Start: i, End: end + 2, RawBody: text[i+2 : end]}) {
				i = end + 1
			}
		}
	}
}

// closeInlineDollar returns the index of the '$' closing an inline span
// whose body starts at from, or -1. The body is a single line and the
// closing '$' is not escaped and not followed by a digit.
func closeInlineDollar(text string, from int) int {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '\n':
			return -1
		case '$':
			if escaped(text, j) {
				continue
			}
			if j+1 < len(text) && isDigit(text[j+1]) {
				continue
			}
			if strings.TrimSpace(text[from:j]) == "" {
				return -1
			}
			return j
		}
	}
	return -1
}

func (f *finder) findBrackets() {
	text := f.text
	for i := 0; i < len(text); i++ {
		if text[i] != '[' || !f.free(i) || (i > 0 && text[i-1] == '\\') {
			continue
		}
		end := matchBracket(text, i)
		if end < 0 {
			continue
		}
		body := text[i+1 : end]
		if !looksLikeMath(body) {
			continue
		}
		if f.claim(Span{Style: StyleBracket, Start: i, End: end + 1, RawBody: body}) {
			i = end
		}
	}
}

// matchBracket returns the index of the ']' closing the '[' at open, or -1.
func matchBracket(text string, open int) int {
	depth := 0
	for j := open; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// looksLikeMath decides whether bracketed text is a formula rather than
// prose such as a citation marker.
func looksLikeMath(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	if strings.ContainsAny(body, "_^=") || strings.Contains(body, "pmatrix") {
		return true
	}
	for i := 0; i+1 < len(body); i++ {
		if body[i] == '\\' && isLetter(body[i+1]) {
			return true
		}
	}
	return false
}

// matchEnvironment returns the end offset of the environment opened at
// start, honoring nested environments of the same name, or -1.
func matchEnvironment(text string, start int, name string) int {
	begin, end := beginTag(name), endTag(name)
	depth := 0
	for j := start; j < len(text); {
		switch {
		case strings.HasPrefix(text[j:], begin):
			depth++
			j += len(begin)
		case strings.HasPrefix(text[j:], end):
			depth--
			j += len(end)
			if depth == 0 {
				return j
			}
		default:
			j++
		}
	}
	return -1
}

// indexUnescaped returns the index of the first occurrence of sub at or
// after from whose first byte is not escaped by a backslash, or -1.
func indexUnescaped(text string, from int, sub string) int {
	for j := from; j+len(sub) <= len(text); {
		k := strings.Index(text[j:], sub)
		if k < 0 {
			return -1
		}
		if !escaped(text, j+k) {
			return j + k
		}
		j += k + 1
	}
	return -1
}

// escaped reports whether text[i] is preceded by an odd number of
// backslashes.
func escaped(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func beginTag(name string) string { return `\begin{` + name + `}` }
func endTag(name string) string   { return `\end{` + name + `}` }

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
