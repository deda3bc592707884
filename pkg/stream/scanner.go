package stream

import "strings"

// DefaultFlushEvery is the default flush cadence in characters.
const DefaultFlushEvery = 3

// Options configures a Scanner.
type Options struct {
	// FlushEvery emits a unit whenever the position of a text character is
	// a multiple of FlushEvery. Zero disables cadence flushing.
	FlushEvery int

	// FlushOnNewline emits a unit after every newline outside math.
	FlushOnNewline bool

	// ParenDelimiters enables \( \) and \[ \] as math delimiters.
	ParenDelimiters bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		FlushEvery:      DefaultFlushEvery,
		FlushOnNewline:  true,
		ParenDelimiters: true,
	}
}

// Scanner tracks math span boundaries in an incrementally fed document.
//
// A Scanner is not safe for concurrent use; each stream owns one.
type Scanner struct {
	opts Options

	position  int
	mode      Mode
	delimiter Delimiter
	text      strings.Builder
	math      strings.Builder

	// pending is a '$' or '\' whose meaning depends on the next character.
	pending    rune
	pendingPos int

	seq     int
	emitted []Unit
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	if opts.FlushEvery < 0 {
		opts.FlushEvery = 0
	}
	return &Scanner{opts: opts}
}

// Consume feeds one character. It returns the unit emitted by this step,
// if any.
func (s *Scanner) Consume(r rune) (Unit, bool) {
	s.emitted = s.emitted[:0]
	s.consume(r)
	return s.last()
}

// Scan feeds a chunk and returns the latest unit emitted while consuming it.
func (s *Scanner) Scan(chunk string) (Unit, bool) {
	s.emitted = s.emitted[:0]
	for _, r := range chunk {
		s.consume(r)
	}
	return s.last()
}

// Units feeds a chunk and returns every unit emitted while consuming it.
func (s *Scanner) Units(chunk string) []Unit {
	s.emitted = s.emitted[:0]
	for _, r := range chunk {
		s.consume(r)
	}
	out := make([]Unit, len(s.emitted))
	copy(out, s.emitted)
	return out
}

// Finish flushes everything consumed so far, including an unterminated
// math span, which is kept as literal text.
func (s *Scanner) Finish() Unit {
	s.emitted = s.emitted[:0]

	if s.pending != 0 {
		if s.mode == ModeMath {
			s.math.WriteRune(s.pending)
		} else {
			s.text.WriteRune(s.pending)
		}
		s.pending = 0
	}
	if s.mode == ModeMath {
		s.text.WriteString(s.math.String())
		s.math.Reset()
		s.mode = ModeText
		s.delimiter = DelimiterNone
	}

	s.emit(ReasonFinish)
	unit, _ := s.last()
	return unit
}

// Reset discards all state.
func (s *Scanner) Reset() {
	s.position = 0
	s.mode = ModeText
	s.delimiter = DelimiterNone
	s.text.Reset()
	s.math.Reset()
	s.pending = 0
	s.pendingPos = 0
	s.seq = 0
	s.emitted = s.emitted[:0]
}

// State returns a snapshot of the scanner's buffers.
func (s *Scanner) State() State {
	st := State{
		Position:   s.position,
		Mode:       s.mode,
		Delimiter:  s.delimiter,
		MathBuffer: s.math.String(),
		TextBuffer: s.text.String(),
	}
	if s.pending != 0 {
		st.Pending = string(s.pending)
	}
	return st
}

// Document returns every character consumed so far.
func (s *Scanner) Document() string {
	doc := s.text.String() + s.math.String()
	if s.pending != 0 {
		doc += string(s.pending)
	}
	return doc
}

func (s *Scanner) consume(r rune) {
	pos := s.position
	s.position++

	if s.pending != 0 {
		prev, prevPos := s.pending, s.pendingPos
		s.pending = 0
		if s.resolve(prev, prevPos, r, pos) {
			return
		}
	}
	s.step(r, pos)
}

// resolve decides what a pending character meant now that next is known.
// It reports whether next was consumed along with it.
func (s *Scanner) resolve(prev rune, prevPos int, next rune, nextPos int) bool {
	switch prev {
	case '$':
		if next == '$' {
			if s.mode == ModeText {
				s.open(DelimiterDisplay)
			} else {
				s.close("$$")
			}
			return true
		}
		if s.mode == ModeText {
			s.open(DelimiterInline)
		} else {
			s.math.WriteRune('$')
		}
		return false

	case '\\':
		if s.mode == ModeText {
			switch {
			case s.opts.ParenDelimiters && next == '(':
				s.open(DelimiterInlineParen)
			case s.opts.ParenDelimiters && next == '[':
				s.open(DelimiterDisplayBracket)
			default:
				s.appendText('\\', prevPos)
				s.appendText(next, nextPos)
			}
			return true
		}
		switch {
		case s.delimiter == DelimiterInlineParen && next == ')':
			s.close(`\)`)
		case s.delimiter == DelimiterDisplayBracket && next == ']':
			s.close(`\]`)
		default:
			s.math.WriteRune('\\')
			s.math.WriteRune(next)
		}
		return true
	}
	return false
}

func (s *Scanner) step(r rune, pos int) {
	if s.mode == ModeText {
		if r == '$' || r == '\\' {
			s.hold(r, pos)
			return
		}
		s.appendText(r, pos)
		return
	}

	switch {
	case r == '\\':
		s.hold(r, pos)
	case r == '$' && s.delimiter == DelimiterInline:
		s.close("$")
	case r == '$' && s.delimiter == DelimiterDisplay:
		s.hold(r, pos)
	default:
		s.math.WriteRune(r)
	}
}

func (s *Scanner) hold(r rune, pos int) {
	s.pending = r
	s.pendingPos = pos
}

func (s *Scanner) appendText(r rune, pos int) {
	s.text.WriteRune(r)
	switch {
	case r == '\n' && s.opts.FlushOnNewline:
		s.emit(ReasonNewline)
	case s.opts.FlushEvery > 0 && pos%s.opts.FlushEvery == 0:
		s.emit(ReasonCadence)
	}
}

func (s *Scanner) open(d Delimiter) {
	s.mode = ModeMath
	s.delimiter = d
	s.math.WriteString(d.open())
}

func (s *Scanner) close(closer string) {
	s.math.WriteString(closer)
	s.text.WriteString(s.math.String())
	s.math.Reset()
	s.mode = ModeText
	s.delimiter = DelimiterNone
	s.emit(ReasonMath)
}

func (s *Scanner) emit(reason Reason) {
	s.seq++
	s.emitted = append(s.emitted, Unit{
		Text:     s.text.String(),
		Seq:      s.seq,
		Reason:   reason,
		Position: s.position,
	})
}

func (s *Scanner) last() (Unit, bool) {
	if len(s.emitted) == 0 {
		return Unit{}, false
	}
	return s.emitted[len(s.emitted)-1], true
}
