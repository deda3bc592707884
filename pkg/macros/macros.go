// Package macros holds the LaTeX macro table handed to math renderers.
//
// A Table is treated as immutable once built: Merge and Parse always return
// a fresh table, so a table can be shared by concurrent render calls.
package macros

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// maxArity is the highest parameter number LaTeX allows in a definition.
const maxArity = 9

// ErrInvalidName is returned for macro names that are not a backslash
// followed by letters.
var ErrInvalidName = errors.New("invalid macro name")

// Macro is a single definition. Expansion may reference #1..#Arity.
type Macro struct {
	Expansion string `yaml:"expansion" json:"expansion"`
	Arity     int    `yaml:"arity,omitempty" json:"arity,omitempty"`
}

// Table maps a macro name (including the leading backslash) to its definition.
type Table map[string]Macro

// Default returns the process-wide default table.
func Default() Table {
	return Table{
		`\E`:    {Expansion: `\mathrm{E}`},
		`\mc`:   {Expansion: `\mathrm{mc}`},
		`\grad`: {Expansion: `\nabla`},
		`\div`:  {Expansion: `\nabla \cdot`},
		`\curl`: {Expansion: `\nabla \times`},
		`\R`:    {Expansion: `\mathbb{R}`},
		`\N`:    {Expansion: `\mathbb{N}`},
		`\Z`:    {Expansion: `\mathbb{Z}`},
		`\abs`:  {Expansion: `\left|#1\right|`, Arity: 1},
		`\norm`: {Expansion: `\left\lVert#1\right\rVert`, Arity: 1},
		`\set`:  {Expansion: `\left\{#1\right\}`, Arity: 1},
	}
}

// Merge returns a new table holding base overlaid with overrides.
func Merge(base, overrides Table) Table {
	out := make(Table, len(base)+len(overrides))
	for name, m := range base {
		out[name] = m
	}
	for name, m := range overrides {
		out[name] = m
	}
	return out
}

// Parse builds a table from plain name to expansion pairs, as found in
// configuration files. Names without a leading backslash get one.
// Arity is inferred from the highest #n in the expansion.
func Parse(defs map[string]string) (Table, error) {
	out := make(Table, len(defs))
	for name, expansion := range defs {
		canonical := name
		if !strings.HasPrefix(canonical, `\`) {
			canonical = `\` + canonical
		}
		if !ValidName(canonical) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		out[canonical] = Macro{Expansion: expansion, Arity: InferArity(expansion)}
	}
	return out, nil
}

// ValidName reports whether name is a backslash followed by ASCII letters.
func ValidName(name string) bool {
	if len(name) < 2 || name[0] != '\\' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isLetter(name[i]) {
			return false
		}
	}
	return true
}

// InferArity returns the highest parameter number referenced by expansion.
func InferArity(expansion string) int {
	arity := 0
	for i := 0; i+1 < len(expansion); i++ {
		if expansion[i] != '#' {
			continue
		}
		n, err := strconv.Atoi(expansion[i+1 : i+2])
		if err != nil || n < 1 || n > maxArity {
			continue
		}
		arity = max(arity, n)
	}
	return arity
}

// Names returns the macro names in sorted order.
func (t Table) Names() []string {
	names := lo.Keys(t)
	sort.Strings(names)
	return names
}

// Flags renders the table as `\name:expansion` definitions, sorted by name,
// in the form accepted by the katex command line.
func (t Table) Flags() []string {
	return lo.Map(t.Names(), func(name string, _ int) string {
		return name + ":" + t[name].Expansion
	})
}

// Clone returns a copy of the table.
func (t Table) Clone() Table {
	return Merge(t, nil)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
