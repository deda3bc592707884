package mathspan

import "strings"

// CleanupRule rewrites a math body. Rules must be idempotent.
type CleanupRule func(body string) string

// DefaultCleanup is the cleanup pipeline applied by Canonicalize.
var DefaultCleanup = []CleanupRule{
	TextToMathrm,
	BraceScripts,
}

// Cleanup applies DefaultCleanup to body.
func Cleanup(body string) string {
	for _, rule := range DefaultCleanup {
		body = rule(body)
	}
	return body
}

// TextToMathrm rewrites \text into \mathrm. Longer commands such as
// \textbf are left alone.
func TextToMathrm(body string) string {
	const from, to = `\text`, `\mathrm`

	if !strings.Contains(body, from) {
		return body
	}

	var out strings.Builder
	out.Grow(len(body) + 8)
	for i := 0; i < len(body); {
		if strings.HasPrefix(body[i:], from) && !escaped(body, i) {
			next := i + len(from)
			if next >= len(body) || !isLetter(body[next]) {
				out.WriteString(to)
				i = next
				continue
			}
		}
		out.WriteByte(body[i])
		i++
	}
	return out.String()
}

// BraceScripts wraps a single-character subscript or superscript in
// braces: x_i becomes x_{i} and x^2 becomes x^{2}. Escaped \_ and \^ are
// untouched.
func BraceScripts(body string) string {
	var out strings.Builder
	out.Grow(len(body) + 8)
	for i := 0; i < len(body); i++ {
		c := body[i]
		out.WriteByte(c)
		if (c != '_' && c != '^') || escaped(body, i) {
			continue
		}
		if i+1 < len(body) && isAlnum(body[i+1]) {
			out.WriteByte('{')
			out.WriteByte(body[i+1])
			out.WriteByte('}')
			i++
		}
	}
	return out.String()
}

func isAlnum(c byte) bool {
	return isLetter(c) || isDigit(c)
}
