package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

const columnGap = 2

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders column-aligned output. Rows are buffered and written on
// Flush, so empty tables produce no output. On a terminal, columns are
// narrowed to fit and long cells wrap.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{out: os.Stdout, headers: headers, width: TerminalWidth()}
}

// NewTableTo creates a table on w with no width limit.
func NewTableTo(w io.Writer, headers ...string) *Table {
	return &Table{out: w, headers: headers}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWidth sets the maximum line width; 0 disables wrapping.
func (t *Table) WithWidth(width int) *Table {
	t.width = width
	return t
}

// Row adds a row. Missing cells are blank and extra cells are dropped.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added
func (t *Table) Len() int {
	return len(t.rows)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := visualLen(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, len(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", len(h))
	}
	t.writeLine(t.headers, widths)
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		cells := make([][]string, len(row))
		height := 1
		for i, cell := range row {
			cells[i] = wrapCell(cell, widths[i])
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}
		for line := 0; line < height; line++ {
			values := make([]string, len(row))
			for i := range row {
				if line < len(cells[i]) {
					values[i] = cells[i][line]
				}
			}
			t.writeLine(values, widths)
		}
	}
}

func (t *Table) writeLine(values []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, v := range values {
		b.WriteString(v)
		if i < len(values)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-visualLen(v)+columnGap))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

// capWidths narrows the widest columns until the table fits termWidth.
// No column is narrowed below its header.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := make([]int, len(widths))
	copy(out, widths)

	total := prefix + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}

	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		cut := total - termWidth
		if room := out[widest] - visualLen(headers[widest]); cut > room {
			cut = room
		}
		out[widest] -= cut
		total -= cut
	}
	return out
}

// wrapCell splits s into lines no wider than width, breaking at spaces
// and hard-breaking words longer than width. A cell that fits is returned
// unchanged, colour codes included.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	plain := ansiRe.ReplaceAllString(s, "")
	var lines []string
	cur := ""
	for _, word := range strings.Fields(plain) {
		if cur != "" && utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= width {
			cur += " " + word
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		for utf8.RuneCountInString(word) > width {
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		cur = word
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// visualLen is the printed width of s, ignoring ANSI colour codes
func visualLen(s string) int {
	return utf8.RuneCountInString(ansiRe.ReplaceAllString(s, ""))
}
