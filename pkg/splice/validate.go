package splice

import (
	"fmt"
	"sort"
)

// RangeError describes an edit whose range does not fit the document.
type RangeError struct {
	Edit    Edit
	Message string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Message)
}

// OverlapError describes two edits that claim the same bytes.
type OverlapError struct {
	First  Edit
	Second Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.Start, e.First.End,
		e.Second.Start, e.Second.End)
}

// Validate checks that every edit lies within a document of docLen bytes.
func Validate(edits []Edit, docLen int) error {
	for _, edit := range edits {
		if edit.Start < 0 {
			return &RangeError{Edit: edit, Message: "start offset is negative"}
		}
		if edit.End < edit.Start {
			return &RangeError{Edit: edit, Message: "end offset is before start offset"}
		}
		if edit.End > docLen {
			return &RangeError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds document length %d", edit.End, docLen),
			}
		}
	}
	return nil
}

// Sort orders edits by start offset, then end offset.
func Sort(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].End < edits[j].End
	})
}

// DetectOverlap returns the first pair of overlapping edits in a sorted slice.
func DetectOverlap(edits []Edit) error {
	for i := 1; i < len(edits); i++ {
		prev := edits[i-1]
		curr := edits[i]
		if curr.Start < prev.End {
			return &OverlapError{First: prev, Second: curr}
		}
	}
	return nil
}

// Prepare validates edits, sorts a copy and rejects overlaps.
func Prepare(edits []Edit, docLen int) ([]Edit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := Validate(edits, docLen); err != nil {
		return nil, err
	}

	result := make([]Edit, len(edits))
	copy(result, edits)
	Sort(result)

	if err := DetectOverlap(result); err != nil {
		return nil, err
	}

	return result, nil
}

// FilterOverlaps keeps the earliest edit of every overlapping group.
// Edits must be sorted. It returns the accepted and the dropped edits.
func FilterOverlaps(edits []Edit) ([]Edit, []Edit) {
	if len(edits) == 0 {
		return nil, nil
	}

	accepted := make([]Edit, 0, len(edits))
	dropped := make([]Edit, 0)

	accepted = append(accepted, edits[0])
	lastEnd := edits[0].End

	for _, edit := range edits[1:] {
		if edit.Start >= lastEnd {
			accepted = append(accepted, edit)
			lastEnd = edit.End
			continue
		}
		dropped = append(dropped, edit)
	}

	return accepted, dropped
}
