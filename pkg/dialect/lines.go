package dialect

import (
	"fmt"
	"strings"
)

// Lines accumulates configuration output one line at a time
type Lines struct {
	indent string
	lines  []string
}

// NewLines returns a buffer that indents each nesting level with indent
func NewLines(indent string) *Lines {
	return &Lines{indent: indent}
}

// Add appends a formatted line at the given nesting level
func (l *Lines) Add(level int, format string, args ...interface{}) {
	l.lines = append(l.lines, strings.Repeat(l.indent, level)+fmt.Sprintf(format, args...))
}

// Blank appends an empty line
func (l *Lines) Blank() {
	l.lines = append(l.lines, "")
}

// Len returns the number of lines written
func (l *Lines) Len() int { return len(l.lines) }

// String joins the lines with "\n". There is no trailing newline.
func (l *Lines) String() string {
	return strings.Join(l.lines, "\n")
}
