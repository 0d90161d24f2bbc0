package format

import "encoding/json"

// jsonFormatter accumulates one row as a name->value map and flushes it as
// a single JSON object on RowEnd; encoding/json.Marshal of a map always
// sorts keys lexically, matching output/json.rs's use of a BTreeMap.
// Rows are joined into a top-level array by Header/Footer/RowSeparator.
// Grounded on output/json.rs's JsonFormatter.
type jsonFormatter struct {
	row map[string]string
}

func newJSONFormatter() *jsonFormatter {
	return &jsonFormatter{row: make(map[string]string)}
}

func (f *jsonFormatter) Header(string, int) (string, bool) { return "[", true }
func (f *jsonFormatter) RowStart() (string, bool)           { return "", false }

func (f *jsonFormatter) Element(name, record string, _ bool) (string, bool) {
	f.row[name] = record
	return "", false
}

func (f *jsonFormatter) RowEnd() (string, bool) {
	b, err := json.Marshal(f.row)
	for k := range f.row {
		delete(f.row, k)
	}
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (f *jsonFormatter) RowSeparator() (string, bool) { return ",", true }
func (f *jsonFormatter) Footer() (string, bool)       { return "]", true }
