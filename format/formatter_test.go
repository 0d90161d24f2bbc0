package format

import (
	"bytes"
	"testing"
)

// writeTestItems drives f over the same two rows output/mod.rs's
// write_test_items helper uses, so each format's expected string below can
// be checked against the original's own embedded test assertions.
func writeTestItems(t *testing.T, f Formatter) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(f, &buf)

	if err := w.WriteHeader("select foo, bar", 2); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := w.WriteRow([]Column{{"foo", "foo_value"}, {"bar", "BAR value"}}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.WriteRow([]Column{{"foo", "123"}, {"bar", ""}}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.WriteFooter(); err != nil {
		t.Fatalf("WriteFooter: %v", err)
	}
	return buf.String()
}

func TestLinesFormat(t *testing.T) {
	got := writeTestItems(t, newFlatWriter('\n', false))
	want := "foo_value\nBAR value\n123\n\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListFormat(t *testing.T) {
	got := writeTestItems(t, newFlatWriter('\x00', false))
	want := "foo_value\x00BAR value\x00123\x00\x00"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTabsFormat(t *testing.T) {
	got := writeTestItems(t, newFlatWriter('\t', true))
	want := "foo_value\tBAR value\t\n123\t\t\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCsvFormat(t *testing.T) {
	got := writeTestItems(t, newCsvFormatter())
	want := "foo_value,BAR value\n123,\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJSONFormat(t *testing.T) {
	got := writeTestItems(t, newJSONFormatter())
	want := `[{"bar":"BAR value","foo":"foo_value"},{"bar":"","foo":"123"}]`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHTMLFormat(t *testing.T) {
	got := writeTestItems(t, newHTMLFormatter())
	want := `<html><head><title>select foo, bar</title></head><body><table>` +
		`<tr><th colspan="2">select foo, bar</th></tr>` +
		`<tr><td>foo_value</td><td>BAR value</td></tr>` +
		`<tr><td>123</td><td></td></tr>` +
		`</table></body></html>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHTMLFormatEscapesQueryAndValues(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(newHTMLFormatter(), &buf)
	_ = w.WriteHeader(`a<b>`, 1)
	_ = w.WriteRow([]Column{{"name", `<script>`}})
	_ = w.WriteFooter()

	got := buf.String()
	if bytes.Contains([]byte(got), []byte("<script>")) {
		t.Fatalf("expected escaped value, got %q", got)
	}
}
