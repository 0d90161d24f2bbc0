package format

import (
	"bytes"
	"encoding/csv"
)

// csvFormatter accumulates one row's values and flushes them as a single
// RFC 4180 record on RowEnd, via stdlib encoding/csv. Grounded on
// output/csv.rs's CsvFormatter.
type csvFormatter struct {
	records []string
}

func newCsvFormatter() *csvFormatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Header(string, int) (string, bool) { return "", false }
func (f *csvFormatter) RowStart() (string, bool)           { return "", false }

func (f *csvFormatter) Element(_, record string, _ bool) (string, bool) {
	f.records = append(f.records, record)
	return "", false
}

func (f *csvFormatter) RowEnd() (string, bool) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(f.records)
	w.Flush()
	f.records = f.records[:0]
	return buf.String(), true
}

func (f *csvFormatter) RowSeparator() (string, bool) { return "", false }
func (f *csvFormatter) Footer() (string, bool)       { return "", false }
