package mathspan

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run is a byte range of character data between tags.
type Run struct {
	Start int
	End   int
}

// protectedTags never contain searchable math.
var protectedTags = map[atom.Atom]bool{
	atom.Pre:      true,
	atom.Code:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Textarea: true,
	atom.Math:     true,
	atom.Svg:      true,
}

// MarkerClasses mark elements that already hold rendered math.
var MarkerClasses = []string{"math-rendered", "math-fallback", "katex", "katex-display"}

// TextRuns returns the ranges of doc holding character data outside
// protected elements, in document order. Adjacent text tokens are merged.
func TextRuns(doc string) []Run {
	z := html.NewTokenizer(strings.NewReader(doc))

	var (
		runs      []Run
		offset    int
		guardName []byte
		guardNest int
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF; a string reader has no other failure mode.
			return runs
		}

		size := len(z.Raw())
		start := offset
		offset += size

		switch tt {
		case html.TextToken:
			if guardNest > 0 || size == 0 {
				continue
			}
			if n := len(runs); n > 0 && runs[n-1].End == start {
				runs[n-1].End = offset
				continue
			}
			runs = append(runs, Run{Start: start, End: offset})

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if guardNest > 0 {
				if string(name) == string(guardName) {
					guardNest++
				}
				continue
			}
			if isProtected(name, hasAttr, z) {
				guardName = append(guardName[:0], name...)
				guardNest = 1
			}

		case html.EndTagToken:
			if guardNest == 0 {
				continue
			}
			name, _ := z.TagName()
			if string(name) == string(guardName) {
				guardNest--
			}

		default:
			// Comments, doctypes and self-closing tags split runs but do not
			// change protection.
		}
	}
}

func isProtected(name []byte, hasAttr bool, z *html.Tokenizer) bool {
	if protectedTags[atom.Lookup(name)] {
		return true
	}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "class" && HasMarkerClass(string(val)) {
			return true
		}
	}
	return false
}

// HasMarkerClass reports whether a class attribute value contains one of
// MarkerClasses.
func HasMarkerClass(class string) bool {
	return lo.ContainsBy(strings.Fields(class), func(field string) bool {
		return lo.Contains(MarkerClasses, field)
	})
}
