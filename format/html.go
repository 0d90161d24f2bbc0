package format

import (
	"fmt"
	"html/template"
)

// htmlFormatter emits a self-contained HTML document: a one-row header
// naming the raw query, spanning colCount columns, followed by a <table>
// row per result row. Values are escaped with html/template's
// HTMLEscapeString so file names containing "<", "&", and so on cannot
// break the surrounding markup. Grounded on output/html.rs's HtmlFormatter,
// widened from a bare format! string to stdlib html/template escaping per
// spec 4.8's ambient requirement.
type htmlFormatter struct{}

func newHTMLFormatter() *htmlFormatter {
	return &htmlFormatter{}
}

func (f *htmlFormatter) Header(rawQuery string, colCount int) (string, bool) {
	escaped := template.HTMLEscapeString(rawQuery)
	return fmt.Sprintf(
		"<html><head><title>%s</title></head><body><table><tr><th colspan=\"%d\">%s</th></tr>",
		escaped, colCount, escaped,
	), true
}

func (f *htmlFormatter) RowStart() (string, bool) { return "<tr>", true }

func (f *htmlFormatter) Element(_, record string, _ bool) (string, bool) {
	return fmt.Sprintf("<td>%s</td>", template.HTMLEscapeString(record)), true
}

func (f *htmlFormatter) RowEnd() (string, bool) { return "</tr>", true }

func (f *htmlFormatter) RowSeparator() (string, bool) { return "", false }

func (f *htmlFormatter) Footer() (string, bool) { return "</table></body></html>", true }
