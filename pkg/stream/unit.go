// Package stream detects math span boundaries in text that arrives one
// character or chunk at a time.
//
// A Scanner accumulates the document and emits a Unit whenever the text
// seen so far reaches a point where re-rendering is worthwhile: a newline,
// the flush cadence, or the close of a math span. Text inside an open math
// span is held back until the span closes, so a renderer never sees half a
// formula.
package stream

// Mode is the scanner's lexical mode.
type Mode int

// Scanner modes.
const (
	ModeText Mode = iota
	ModeMath
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeMath {
		return "math"
	}
	return "text"
}

// Delimiter identifies the opening delimiter of the open math span.
type Delimiter int

// Delimiters.
const (
	DelimiterNone Delimiter = iota
	DelimiterInline
	DelimiterDisplay
	DelimiterInlineParen
	DelimiterDisplayBracket
)

var delimiterNames = map[Delimiter]string{
	DelimiterNone:           "none",
	DelimiterInline:         "inline",
	DelimiterDisplay:        "display",
	DelimiterInlineParen:    "inline-paren",
	DelimiterDisplayBracket: "display-bracket",
}

// String returns the delimiter name.
func (d Delimiter) String() string {
	if name, ok := delimiterNames[d]; ok {
		return name
	}
	return "unknown"
}

// open returns the source text that opens a span with this delimiter.
func (d Delimiter) open() string {
	switch d {
	case DelimiterInline:
		return "$"
	case DelimiterDisplay:
		return "$$"
	case DelimiterInlineParen:
		return `\(`
	case DelimiterDisplayBracket:
		return `\[`
	default:
		return ""
	}
}

// Reason records why a unit was emitted.
type Reason int

// Emission reasons.
const (
	ReasonNewline Reason = iota
	ReasonCadence
	ReasonMath
	ReasonFinish
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNewline:
		return "newline"
	case ReasonCadence:
		return "cadence"
	case ReasonMath:
		return "math"
	case ReasonFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Unit is a snapshot of all text accumulated up to the last completed
// span boundary. It is safe to hand to a renderer.
type Unit struct {
	// Text is the accumulated document, excluding any open math span.
	Text string

	// Seq numbers units from 1 within one scanner.
	Seq int

	// Reason is why the unit was emitted.
	Reason Reason

	// Position is the number of characters consumed when the unit was emitted.
	Position int
}

// State is a read-only view of the scanner's internal buffers.
type State struct {
	Position   int
	Mode       Mode
	Delimiter  Delimiter
	MathBuffer string
	TextBuffer string

	// Pending holds a character whose meaning depends on the next one.
	Pending string
}
