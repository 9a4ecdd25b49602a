package markup

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders d as an HTML fragment. All text is escaped.
func HTML(d Document) string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		switch v := blk.(type) {
		case *Heading:
			fmt.Fprintf(&b, "<h%d>", v.Level)
			writeHTMLInline(&b, v.Content)
			fmt.Fprintf(&b, "</h%d>\n", v.Level)
		case *List:
			tag := "ul"
			if v.Ordered {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">\n")
			for _, item := range v.Items {
				b.WriteString("<li>")
				writeHTMLInline(&b, item)
				b.WriteString("</li>\n")
			}
			b.WriteString("</" + tag + ">\n")
		case *Blockquote:
			b.WriteString("<blockquote>\n")
			for _, line := range v.Lines {
				b.WriteString("<p>")
				writeHTMLInline(&b, line)
				b.WriteString("</p>\n")
			}
			b.WriteString("</blockquote>\n")
		case *Paragraph:
			b.WriteString("<p>")
			writeHTMLInline(&b, v.Content)
			b.WriteString("</p>\n")
		}
	}
	return b.String()
}

func writeHTMLInline(b *strings.Builder, in Inline) {
	for _, r := range in {
		if r.Bold {
			b.WriteString("<strong>")
		}
		if r.Italic {
			b.WriteString("<em>")
		}
		b.WriteString(html.EscapeString(r.Text))
		if r.Italic {
			b.WriteString("</em>")
		}
		if r.Bold {
			b.WriteString("</strong>")
		}
	}
}

// Markdown re-emits d in canonical markdown. Used for terminal rendering.
func Markdown(d Document) string {
	parts := make([]string, 0, len(d.Blocks))
	for _, blk := range d.Blocks {
		var b strings.Builder
		switch v := blk.(type) {
		case *Heading:
			b.WriteString(strings.Repeat("#", v.Level) + " ")
			writeMarkdownInline(&b, v.Content)
		case *List:
			for i, item := range v.Items {
				if i > 0 {
					b.WriteByte('\n')
				}
				if v.Ordered {
					fmt.Fprintf(&b, "%d. ", i+1)
				} else {
					b.WriteString("- ")
				}
				writeMarkdownInline(&b, item)
			}
		case *Blockquote:
			for i, line := range v.Lines {
				if i > 0 {
					// keep quoted lines in one quote block
					b.WriteString("\n>\n")
				}
				b.WriteString("> ")
				writeMarkdownInline(&b, line)
			}
		case *Paragraph:
			writeMarkdownInline(&b, v.Content)
		}
		parts = append(parts, b.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func writeMarkdownInline(b *strings.Builder, in Inline) {
	for _, r := range in {
		marker := ""
		switch {
		case r.Bold && r.Italic:
			marker = "***"
		case r.Bold:
			marker = "**"
		case r.Italic:
			marker = "*"
		}
		b.WriteString(marker)
		b.WriteString(r.Text)
		b.WriteString(marker)
	}
}

// PlainText renders d without any markers, one line per heading,
// item, quoted line or paragraph. Used for read-aloud.
func PlainText(d Document) string {
	var lines []string
	for _, blk := range d.Blocks {
		switch v := blk.(type) {
		case *Heading:
			lines = append(lines, v.Content.String())
		case *List:
			for _, item := range v.Items {
				lines = append(lines, item.String())
			}
		case *Blockquote:
			for _, line := range v.Lines {
				lines = append(lines, line.String())
			}
		case *Paragraph:
			lines = append(lines, v.Content.String())
		}
	}
	return strings.Join(lines, "\n")
}
