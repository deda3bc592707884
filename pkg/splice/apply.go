package splice

import "strings"

// Apply applies a prepared slice of edits to doc and returns the result.
// Edits must come from Prepare: sorted, in range and non-overlapping.
func Apply(doc string, edits []Edit) string {
	if len(edits) == 0 {
		return doc
	}

	delta := 0
	for _, e := range edits {
		delta += len(e.Text) - e.Len()
	}

	var out strings.Builder
	out.Grow(len(doc) + delta)

	cursor := 0
	for _, e := range edits {
		out.WriteString(doc[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.WriteString(doc[cursor:])

	return out.String()
}

// Splice prepares edits against doc and applies them.
func Splice(doc string, edits []Edit) (string, error) {
	prepared, err := Prepare(edits, len(doc))
	if err != nil {
		return doc, err
	}
	return Apply(doc, prepared), nil
}
