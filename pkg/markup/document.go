// Package markup turns the markdown-flavoured text returned by the
// generative API into a structured document.
//
// The accepted subset is small: #, ## and ### headings, "- " and "* "
// bullets, "N. " ordered items, ">" blockquote lines, **bold** and
// *italic*. Consecutive lines of the same list or blockquote kind are
// grouped into one block. Anything unrecognised becomes a paragraph, so
// Parse never fails.
package markup

import "encoding/json"

// Block is one top-level element of a Document. The concrete types are
// *Heading, *List, *Blockquote and *Paragraph.
type Block interface {
	Kind() Kind
	block()
}

// Kind discriminates block types.
type Kind string

// Block kinds.
const (
	KindHeading    Kind = "heading"
	KindList       Kind = "list"
	KindBlockquote Kind = "blockquote"
	KindParagraph  Kind = "paragraph"
)

// Run is a stretch of text with uniform emphasis.
type Run struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Inline is formatted text content.
type Inline []Run

// String returns the text content without formatting.
func (in Inline) String() string {
	n := 0
	for _, r := range in {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range in {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Heading is a #, ## or ### line.
type Heading struct {
	Level   int    `json:"level"`
	Content Inline `json:"content"`
}

// List is a run of consecutive bullet or numbered items.
type List struct {
	Ordered bool     `json:"ordered"`
	Items   []Inline `json:"items"`
}

// Blockquote is a run of consecutive ">" lines.
type Blockquote struct {
	Lines []Inline `json:"lines"`
}

// Paragraph is any other non-blank line.
type Paragraph struct {
	Content Inline `json:"content"`
}

func (*Heading) Kind() Kind    { return KindHeading }
func (*List) Kind() Kind       { return KindList }
func (*Blockquote) Kind() Kind { return KindBlockquote }
func (*Paragraph) Kind() Kind  { return KindParagraph }

func (*Heading) block()    {}
func (*List) block()       {}
func (*Blockquote) block() {}
func (*Paragraph) block()  {}

// Document is the parsed form of a response.
type Document struct {
	Blocks []Block
}

// Empty reports whether the document has no blocks.
func (d Document) Empty() bool { return len(d.Blocks) == 0 }

// MarshalJSON encodes blocks with a "type" discriminator so browser code
// can switch on it.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		m := map[string]any{"type": b.Kind()}
		switch v := b.(type) {
		case *Heading:
			m["level"] = v.Level
			m["content"] = v.Content
		case *List:
			m["ordered"] = v.Ordered
			m["items"] = v.Items
		case *Blockquote:
			m["lines"] = v.Lines
		case *Paragraph:
			m["content"] = v.Content
		}
		out = append(out, m)
	}
	return json.Marshal(struct {
		Blocks []map[string]any `json:"blocks"`
	}{out})
}
