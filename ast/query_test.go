package ast

import "testing"

func TestQueryIsOrderedAndAggregate(t *testing.T) {
	q := &Query{
		Fields: []*Expr{NewField(FieldName), NewFunction(FuncCount)},
	}
	if q.IsOrdered() {
		t.Error("query with no ordering fields should not report ordered")
	}
	if !q.HasAggregateColumn() {
		t.Error("expected count() column to report an aggregate column")
	}

	q.OrderingFields = []*Expr{NewField(FieldSize)}
	q.OrderingAsc = []bool{true}
	if !q.IsOrdered() {
		t.Error("query with an ordering field should report ordered")
	}
}

func TestQueryGetAllFields(t *testing.T) {
	q := &Query{
		Fields: []*Expr{
			NewField(FieldName),
			NewFunctionLeft(FuncLower, NewField(FieldPath)),
		},
	}
	fields := q.GetAllFields()
	if _, ok := fields[FieldName]; !ok {
		t.Error("expected Name in all fields")
	}
	if _, ok := fields[FieldPath]; !ok {
		t.Error("expected Path in all fields")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"tabs": FormatTabs, "Lines": FormatLines, "LIST": FormatList,
		"csv": FormatCsv, "json": FormatJson, "html": FormatHtml,
	}
	for in, want := range tests {
		got, ok := ParseOutputFormat(in)
		if !ok || got != want {
			t.Errorf("ParseOutputFormat(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
	if _, ok := ParseOutputFormat("yaml"); ok {
		t.Error("expected ParseOutputFormat to reject an unknown format")
	}
}

func TestNewRootDefaults(t *testing.T) {
	r := NewRoot("/tmp")
	if r.Path != "/tmp" {
		t.Errorf("Path = %q, want /tmp", r.Path)
	}
	if r.Traversal != TraversalBfs {
		t.Error("expected default traversal to be BFS")
	}
	if r.MinDepth != 0 || r.MaxDepth != 0 {
		t.Error("expected default depth bounds to be zero (unlimited)")
	}
	if r.Archives || r.Symlinks {
		t.Error("expected archives/symlinks to default to false")
	}
}
