package markup

import "strings"

// cell is one byte of content together with the emphasis applied to it.
// Markers are ASCII, so splitting runs only at marker positions never
// cuts a multi-byte rune.
type cell struct {
	c      byte
	bold   bool
	italic bool
}

// formatInline applies the bold pass and then the italic pass to s.
//
// Both passes pair markers left to right, first match wins, shortest
// content. The italic pass sees the output of the bold pass, so an
// italic pair may start outside a bold span and end inside it; the
// result is expressed as runs with independent flags. Unpaired markers
// stay as literal text.
func formatInline(s string) Inline {
	cells := boldPass(s)
	cells = italicPass(cells)
	return toRuns(cells)
}

func boldPass(s string) []cell {
	cells := make([]cell, 0, len(s))
	plain := func(t string, bold bool) {
		for i := 0; i < len(t); i++ {
			cells = append(cells, cell{c: t[i], bold: bold})
		}
	}

	for {
		open := strings.Index(s, "**")
		if open < 0 {
			break
		}
		end := strings.Index(s[open+2:], "**")
		if end < 0 {
			break
		}
		end += open + 2
		plain(s[:open], false)
		plain(s[open+2:end], true)
		s = s[end+2:]
	}
	plain(s, false)
	return cells
}

func italicPass(cells []cell) []cell {
	out := make([]cell, 0, len(cells))
	i := 0
	for i < len(cells) {
		if cells[i].c != '*' {
			out = append(out, cells[i])
			i++
			continue
		}
		j := i + 1
		for j < len(cells) && cells[j].c != '*' {
			j++
		}
		if j == len(cells) {
			// No closing marker: the rest is literal.
			out = append(out, cells[i:]...)
			break
		}
		for k := i + 1; k < j; k++ {
			c := cells[k]
			c.italic = true
			out = append(out, c)
		}
		i = j + 1
	}
	return out
}

func toRuns(cells []cell) Inline {
	var runs Inline
	var b strings.Builder
	start := 0
	for i := 0; i <= len(cells); i++ {
		if i < len(cells) && cells[i].bold == cells[start].bold && cells[i].italic == cells[start].italic {
			b.WriteByte(cells[i].c)
			continue
		}
		if b.Len() > 0 {
			runs = append(runs, Run{Text: b.String(), Bold: cells[start].bold, Italic: cells[start].italic})
			b.Reset()
		}
		if i < len(cells) {
			start = i
			b.WriteByte(cells[i].c)
		}
	}
	return runs
}
