package mathspan

import (
	"strings"

	"golang.org/x/net/html"
)

// RowSeparator joins the rows of an unwrapped environment.
const RowSeparator = ` \\ `

// alignmentEnvironments already align their rows and are never wrapped
// again.
var alignmentEnvironments = map[string]bool{
	"aligned":   true,
	"align":     true,
	"align*":    true,
	"alignat":   true,
	"alignedat": true,
	"gathered":  true,
	"gather":    true,
	"gather*":   true,
	"split":     true,
	"array":     true,
	"cases":     true,
	"matrix":    true,
	"pmatrix":   true,
	"bmatrix":   true,
	"vmatrix":   true,
}

// Canonicalize fills in span.CanonicalBody and span.Display.
//
// The steps always run in this order: decode HTML entities, promote
// bracket spans to display math, unwrap aligned or equation* environments
// into rows joined by RowSeparator, wrap multi-row display bodies in an
// aligned environment, then apply the cleanup pipeline.
func Canonicalize(span Span) Span {
	body := html.UnescapeString(span.RawBody)
	display := span.Style.Display()

	if name, inner, ok := unwrapEnvironment(body, span); ok {
		span.Environment = name
		body = joinRows(inner)
		display = true
	}

	body = strings.TrimSpace(body)
	if display && needsAlignment(body) {
		body = beginTag("aligned") + body + endTag("aligned")
	}

	span.CanonicalBody = Cleanup(body)
	span.Display = display
	return span
}

// unwrapEnvironment strips a bare environment, or an environment that
// makes up the whole body of a display span.
func unwrapEnvironment(body string, span Span) (string, string, bool) {
	if span.Style != StyleEnvironment && !span.Style.Display() {
		return "", "", false
	}
	trimmed := strings.TrimSpace(body)
	for _, name := range bareEnvironments {
		begin, end := beginTag(name), endTag(name)
		if !strings.HasPrefix(trimmed, begin) || !strings.HasSuffix(trimmed, end) {
			continue
		}
		// The closing tag must match the opening one, not a nested sibling.
		if matchEnvironment(trimmed, 0, name) != len(trimmed) {
			continue
		}
		return name, trimmed[len(begin) : len(trimmed)-len(end)], true
	}
	return "", "", false
}

func joinRows(inner string) string {
	rows := strings.Split(inner, `\\`)
	kept := rows[:0]
	for _, row := range rows {
		if row = strings.TrimSpace(row); row != "" {
			kept = append(kept, row)
		}
	}
	return strings.Join(kept, RowSeparator)
}

// needsAlignment reports whether body has a row separator or alignment
// ampersand at the top level and is not already an alignment environment.
func needsAlignment(body string) bool {
	if isAlignmentEnvironment(body) {
		return false
	}

	depth := 0
	for i := 0; i < len(body); i++ {
		switch {
		case strings.HasPrefix(body[i:], `\begin{`):
			depth++
			i += len(`\begin{`) - 1
		case strings.HasPrefix(body[i:], `\end{`):
			depth--
			i += len(`\end{`) - 1
		case body[i] == '\\' && i+1 < len(body):
			if body[i+1] == '\\' && depth == 0 {
				return true
			}
			i++
		case body[i] == '&' && depth == 0:
			return true
		}
	}
	return false
}

func isAlignmentEnvironment(body string) bool {
	if !strings.HasPrefix(body, `\begin{`) {
		return false
	}
	rest := body[len(`\begin{`):]
	closing := strings.IndexByte(rest, '}')
	if closing < 0 {
		return false
	}
	name := rest[:closing]
	return alignmentEnvironments[name] &&
		strings.HasSuffix(body, endTag(name)) &&
		matchEnvironment(body, 0, name) == len(body)
}
