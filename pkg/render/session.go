package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/stream"
)

// Update is delivered for every rendered unit of a session.
type Update struct {
	// Unit is the scanner output that was rendered.
	Unit stream.Unit

	// HTML is the full rendered document as of Unit.
	HTML string

	// Spans and Failed count math spans in HTML.
	Spans  int
	Failed int

	// Elapsed is the time spent rendering this unit.
	Elapsed time.Duration
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// Stream configures the scanner.
	Stream stream.Options

	// Macros are per-session overrides merged over the pipeline's table.
	Macros macros.Table

	// OnUpdate receives every rendered unit, in order, on the writer's
	// goroutine.
	OnUpdate func(Update)

	// Coalesce renders only the last unit emitted by each Write.
	Coalesce bool

	// Logger receives debug output per unit. Nil discards.
	Logger *log.Logger
}

// Session renders an incrementally arriving document. Bytes written to it
// are scanned for span boundaries, and every emitted unit is rendered
// through the pipeline.
//
// A Session is safe for concurrent use, but writes are serialized.
type Session struct {
	id       uuid.UUID
	ctx      context.Context
	pipeline *Pipeline
	opts     SessionOptions
	logger   *log.Logger

	mu      sync.Mutex
	scanner *stream.Scanner
	partial []byte
	html    string
	updates int
	closed  bool
}

// NewSession starts a session. Cancelling ctx discards its state and makes
// further writes fail.
func NewSession(ctx context.Context, pipeline *Pipeline, opts SessionOptions) *Session {
	id := uuid.New()
	return &Session{
		id:       id,
		ctx:      ctx,
		pipeline: pipeline,
		opts:     opts,
		logger:   pipeline.WithLogger(opts.Logger).With(logging.FieldSession, id.String()),
		scanner:  stream.New(opts.Stream),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// Write feeds p to the scanner. A multi-byte character split across writes
// is held until it is complete.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return 0, err
	}

	buf := append(s.partial, p...)
	n := completePrefix(buf)
	s.partial = bytes.Clone(buf[n:])

	units := s.scanner.Units(string(buf[:n]))
	if s.opts.Coalesce && len(units) > 1 {
		units = units[len(units)-1:]
	}
	for _, unit := range units {
		if err := s.render(unit); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// WriteString is Write for strings.
func (s *Session) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Close finishes the document, rendering anything still buffered. An
// unterminated math span is rendered as literal text.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	s.closed = true

	if len(s.partial) > 0 {
		// Invalid trailing bytes; let the scanner see the replacement rune.
		s.scanner.Units(string(s.partial))
		s.partial = nil
	}
	return s.render(s.scanner.Finish())
}

// HTML returns the most recent rendered document.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// Updates returns the number of units rendered so far.
func (s *Session) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// State returns a snapshot of the scanner.
func (s *Session) State() stream.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanner.State()
}

func (s *Session) check() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.ctx.Err(); err != nil {
		s.scanner.Reset()
		s.partial = nil
		s.html = ""
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) render(unit stream.Unit) error {
	start := time.Now()
	result, err := s.pipeline.Render(s.ctx, unit.Text, s.opts.Macros)
	if err != nil {
		return fmt.Errorf("session %s unit %d: %w", s.id, unit.Seq, err)
	}
	elapsed := time.Since(start)

	s.html = result.HTML
	s.updates++
	s.logger.Debug("unit rendered",
		logging.FieldSeq, unit.Seq,
		logging.FieldReason, unit.Reason.String(),
		logging.FieldPosition, unit.Position,
		logging.FieldSpans, result.Spans,
		logging.FieldElapsed, elapsed,
	)

	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(Update{
			Unit:    unit,
			HTML:    result.HTML,
			Spans:   result.Spans,
			Failed:  result.Failed,
			Elapsed: elapsed,
		})
	}
	return nil
}

// completePrefix returns the length of the longest prefix of buf that does
// not end inside a multi-byte character.
func completePrefix(buf []byte) int {
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(buf[i]) {
			continue
		}
		if !utf8.FullRune(buf[i:]) {
			return i
		}
		break
	}
	return len(buf)
}
