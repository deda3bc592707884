// Package mathspan locates math spans in rendered HTML and rewrites their
// bodies into the single canonical form handed to a math renderer.
package mathspan

// Style identifies how a span was delimited in the source.
type Style int

// Span styles.
const (
	StyleInline Style = iota
	StyleDisplay
	StyleInlineParen
	StyleDisplayBracket
	StyleEnvironment
	StyleBracket
)

var styleNames = map[Style]string{
	StyleInline:         "inline",
	StyleDisplay:        "display",
	StyleInlineParen:    "inline-paren",
	StyleDisplayBracket: "display-bracket",
	StyleEnvironment:    "environment",
	StyleBracket:        "bracket",
}

// String returns the style name.
func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return "unknown"
}

// Display reports whether spans of this style render in display mode.
func (s Style) Display() bool {
	switch s {
	case StyleDisplay, StyleDisplayBracket, StyleEnvironment, StyleBracket:
		return true
	default:
		return false
	}
}

// Span is one math region found in a document.
type Span struct {
	Style Style

	// Start and End are byte offsets of Raw in the searched document.
	Start int
	End   int

	// Raw is the matched source including delimiters.
	Raw string

	// RawBody is the text between the delimiters, still HTML-escaped.
	// For environment spans it is the whole environment.
	RawBody string

	// Environment is the environment name for environment spans.
	Environment string

	// CanonicalBody and Display are set by Canonicalize.
	CanonicalBody string
	Display       bool
}

// Len returns the number of source bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}
