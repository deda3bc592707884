// Package highlight post-processes rendered HTML for code highlighting.
//
// Highlighting itself happens in the browser. This package only prepares
// the markup, and a missing highlighter is never an error.
package highlight

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/gomdmath/pkg/langdetect"
	"github.com/yaklabco/gomdmath/pkg/splice"
)

// Names accepted by New.
const (
	NameNone = "none"
	NameTag  = "tag"
)

// Highlighter rewrites code blocks in an HTML document.
type Highlighter interface {
	Highlight(doc string) string
}

// New returns the highlighter called name. Unknown names get Noop.
//
//nolint:ireturn // callers choose the implementation by name
func New(name string) Highlighter {
	if name == NameTag {
		return LanguageTagger{}
	}
	return Noop{}
}

// Noop returns documents unchanged.
type Noop struct{}

// Highlight implements Highlighter.
func (Noop) Highlight(doc string) string {
	return doc
}

// LanguageTagger adds a language-<name> class to <pre><code> blocks that
// have none, using the detected language of the block's text.
type LanguageTagger struct{}

// Highlight implements Highlighter.
func (LanguageTagger) Highlight(doc string) string {
	if !strings.Contains(doc, "<pre") {
		return doc
	}

	edits := codeBlockEdits(doc)
	if len(edits) == 0 {
		return doc
	}
	out, err := splice.Splice(doc, edits)
	if err != nil {
		return doc
	}
	return out
}

type codeBlock struct {
	tagStart int
	tagEnd   int
	attrs    []html.Attribute
	tagged   bool
	text     strings.Builder
}

func codeBlockEdits(doc string) []splice.Edit {
	z := html.NewTokenizer(strings.NewReader(doc))

	var (
		edits    []splice.Edit
		offset   int
		afterPre bool
		block    *codeBlock
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return edits
		}
		start := offset
		offset += len(z.Raw())

		if block != nil {
			if tt == html.TextToken {
				block.text.Write(z.Text())
				continue
			}
			if tt == html.EndTagToken {
				if name, _ := z.TagName(); atom.Lookup(name) == atom.Code {
					if edit, ok := block.edit(); ok {
						edits = append(edits, edit)
					}
					block = nil
				}
			}
			continue
		}

		if tt != html.StartTagToken {
			afterPre = false
			continue
		}
		name, hasAttr := z.TagName()
		tag := atom.Lookup(name)
		if tag == atom.Code && afterPre {
			block = newCodeBlock(z, hasAttr, start, offset)
		}
		afterPre = tag == atom.Pre
	}
}

func newCodeBlock(z *html.Tokenizer, hasAttr bool, start, end int) *codeBlock {
	block := &codeBlock{tagStart: start, tagEnd: end}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attr := html.Attribute{Key: string(key), Val: string(val)}
		if attr.Key == "class" && strings.Contains(attr.Val, "language-") {
			block.tagged = true
		}
		block.attrs = append(block.attrs, attr)
	}
	return block
}

// edit returns the replacement opening tag carrying the detected language.
func (b *codeBlock) edit() (splice.Edit, bool) {
	if b.tagged {
		return splice.Edit{}, false
	}
	lang := langdetect.Detect([]byte(b.text.String()))
	if lang == langdetect.LangText {
		return splice.Edit{}, false
	}

	class := "language-" + lang
	var tag strings.Builder
	tag.WriteString("<code")
	for _, attr := range b.attrs {
		if attr.Key == "class" {
			class = attr.Val + " " + class
			continue
		}
		fmt.Fprintf(&tag, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
	}
	fmt.Fprintf(&tag, ` class="%s">`, html.EscapeString(class))

	return splice.Edit{Start: b.tagStart, End: b.tagEnd, Text: tag.String()}, true
}
