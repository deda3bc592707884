// Package splice replaces byte ranges of a document with new text.
//
// Every range refers to offsets in the original document, so a batch of
// replacements is applied in a single pass and never observes the output
// of an earlier replacement.
package splice

// Edit replaces the bytes [Start, End) of a document with Text.
type Edit struct {
	// Start is the byte index where the replacement begins (inclusive).
	Start int

	// End is the byte index where the replacement ends (exclusive).
	End int

	// Text is the replacement.
	Text string
}

// Len returns the number of original bytes covered by the edit.
func (e Edit) Len() int {
	return e.End - e.Start
}

// Builder accumulates edits against one document.
type Builder struct {
	Edits []Edit
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		Edits: make([]Edit, 0),
	}
}

// Replace adds an edit that replaces bytes [start, end) with text.
func (b *Builder) Replace(start, end int, text string) {
	b.Edits = append(b.Edits, Edit{
		Start: start,
		End:   end,
		Text:  text,
	})
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Delete adds an edit that removes bytes [start, end).
func (b *Builder) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Len returns the number of accumulated edits.
func (b *Builder) Len() int {
	return len(b.Edits)
}
