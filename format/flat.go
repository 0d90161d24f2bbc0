package format

import "strings"

// flatWriter implements the tabs/lines/list formats: each value is
// immediately followed by recordSeparator; a line is optionally terminated
// by a trailing newline. Grounded on output/flat.rs's FlatWriter and its
// three const instances (TABS_FORMATTER, LINES_FORMATTER, LIST_FORMATTER).
type flatWriter struct {
	recordSeparator byte
	newlineAtRowEnd bool
}

func newFlatWriter(recordSeparator byte, newlineAtRowEnd bool) *flatWriter {
	return &flatWriter{recordSeparator: recordSeparator, newlineAtRowEnd: newlineAtRowEnd}
}

func (f *flatWriter) Header(string, int) (string, bool) { return "", false }
func (f *flatWriter) RowStart() (string, bool)           { return "", false }

func (f *flatWriter) Element(_, record string, _ bool) (string, bool) {
	var b strings.Builder
	b.WriteString(record)
	b.WriteByte(f.recordSeparator)
	return b.String(), true
}

func (f *flatWriter) RowEnd() (string, bool) {
	if !f.newlineAtRowEnd {
		return "", false
	}
	return "\n", true
}

func (f *flatWriter) RowSeparator() (string, bool) { return "", false }
func (f *flatWriter) Footer() (string, bool)       { return "", false }
