package markup

import (
	"regexp"
	"strings"
)

var orderedPrefix = regexp.MustCompile(`^\d+\.\s`)

// openKind is the block currently accepting lines. At most one block is
// open at a time.
type openKind int

const (
	openNone openKind = iota
	openUnordered
	openOrdered
	openQuote
)

// parser holds the state of one Parse call.
type parser struct {
	doc   Document
	open  openKind
	list  *List
	quote *Blockquote
}

// Parse converts text into a Document in a single forward pass.
// It is pure: the same input always yields the same document.
func Parse(text string) Document {
	p := &parser{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		p.line(line)
	}
	p.close()
	return p.doc
}

func (p *parser) line(line string) {
	switch {
	case strings.HasPrefix(line, ">"):
		p.enter(openQuote)
		p.quote.Lines = append(p.quote.Lines, formatInline(strings.TrimSpace(line[1:])))

	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		p.enter(openUnordered)
		p.list.Items = append(p.list.Items, formatInline(strings.TrimSpace(line[2:])))

	case orderedPrefix.MatchString(line):
		p.enter(openOrdered)
		item := orderedPrefix.ReplaceAllString(line, "")
		p.list.Items = append(p.list.Items, formatInline(strings.TrimSpace(item)))

	case strings.HasPrefix(line, "### "):
		p.heading(3, line[4:])

	case strings.HasPrefix(line, "## "):
		p.heading(2, line[3:])

	case strings.HasPrefix(line, "# "):
		p.heading(1, line[2:])

	default:
		p.close()
		p.emit(&Paragraph{Content: formatInline(line)})
	}
}

func (p *parser) heading(level int, text string) {
	p.close()
	p.emit(&Heading{Level: level, Content: formatInline(strings.TrimSpace(text))})
}

// enter makes kind the open block, closing a different open block first.
func (p *parser) enter(kind openKind) {
	if p.open == kind {
		return
	}
	p.close()
	switch kind {
	case openUnordered, openOrdered:
		p.list = &List{Ordered: kind == openOrdered}
	case openQuote:
		p.quote = &Blockquote{}
	}
	p.open = kind
}

// close emits the open block, if any.
func (p *parser) close() {
	switch p.open {
	case openUnordered, openOrdered:
		p.emit(p.list)
		p.list = nil
	case openQuote:
		p.emit(p.quote)
		p.quote = nil
	}
	p.open = openNone
}

func (p *parser) emit(b Block) {
	p.doc.Blocks = append(p.doc.Blocks, b)
}
