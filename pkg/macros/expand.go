package macros

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxExpansionDepth bounds recursive expansion so self-referencing
// definitions terminate.
const maxExpansionDepth = 16

var (
	// ErrRecursion is returned when expansion does not settle.
	ErrRecursion = errors.New("macro expansion too deep")

	// ErrMissingArgument is returned when a parameterized macro is used
	// without enough arguments.
	ErrMissingArgument = errors.New("missing macro argument")
)

// Expand replaces every macro of t used in body with its expansion.
// Renderers that cannot apply a macro table themselves call this before
// handing the body on.
func (t Table) Expand(body string) (string, error) {
	if len(t) == 0 {
		return body, nil
	}

	current := body
	for range maxExpansionDepth {
		next, changed, err := t.expandOnce(current)
		if err != nil {
			return body, err
		}
		if !changed {
			return next, nil
		}
		current = next
	}
	return body, fmt.Errorf("%w: more than %d passes", ErrRecursion, maxExpansionDepth)
}

func (t Table) expandOnce(body string) (string, bool, error) {
	var out strings.Builder
	out.Grow(len(body))
	changed := false

	i := 0
	for i < len(body) {
		if body[i] != '\\' {
			out.WriteByte(body[i])
			i++
			continue
		}

		end := i + 1
		for end < len(body) && isLetter(body[end]) {
			end++
		}
		if end == i+1 {
			// Control symbol such as \\ or \{.
			end = min(i+2, len(body))
			out.WriteString(body[i:end])
			i = end
			continue
		}

		name := body[i:end]
		macro, ok := t[name]
		if !ok {
			out.WriteString(name)
			i = end
			continue
		}

		args, next, err := readArguments(body, end, macro.Arity)
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", name, err)
		}
		out.WriteString(substitute(macro.Expansion, args))
		// Keep the expansion from fusing with a following letter.
		if next < len(body) && isLetter(body[next]) && endsWithControlWord(macro.Expansion) {
			out.WriteByte(' ')
		}
		i = next
		changed = true
	}

	return out.String(), changed, nil
}

// readArguments reads arity arguments starting at pos. Each argument is a
// brace group, a control sequence, or a single character.
func readArguments(body string, pos, arity int) ([]string, int, error) {
	args := make([]string, 0, arity)
	for range arity {
		for pos < len(body) && (body[pos] == ' ' || body[pos] == '\t' || body[pos] == '\n') {
			pos++
		}
		if pos >= len(body) {
			return nil, pos, ErrMissingArgument
		}

		switch body[pos] {
		case '{':
			end := matchingBrace(body, pos)
			if end < 0 {
				return nil, pos, fmt.Errorf("%w: unbalanced brace", ErrMissingArgument)
			}
			args = append(args, body[pos+1:end])
			pos = end + 1
		case '\\':
			end := pos + 1
			for end < len(body) && isLetter(body[end]) {
				end++
			}
			if end == pos+1 {
				end = min(pos+2, len(body))
			}
			args = append(args, body[pos:end])
			pos = end
		default:
			args = append(args, body[pos:pos+1])
			pos++
		}
	}
	return args, pos, nil
}

// matchingBrace returns the index of the brace closing the one at open, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func substitute(expansion string, args []string) string {
	if len(args) == 0 {
		return expansion
	}
	var out strings.Builder
	for i := 0; i < len(expansion); i++ {
		if expansion[i] == '#' && i+1 < len(expansion) {
			n, err := strconv.Atoi(expansion[i+1 : i+2])
			if err == nil && n >= 1 && n <= len(args) {
				out.WriteString(args[n-1])
				i++
				continue
			}
		}
		out.WriteByte(expansion[i])
	}
	return out.String()
}

func endsWithControlWord(s string) bool {
	i := len(s) - 1
	for i >= 0 && isLetter(s[i]) {
		i--
	}
	return i >= 0 && i < len(s)-1 && s[i] == '\\'
}
