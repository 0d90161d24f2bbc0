package ast

import "strings"

// TraversalMode selects breadth-first or depth-first directory walking for
// a Root (spec 4.5). Grounded on query.rs's TraversalMode.
type TraversalMode int

const (
	TraversalBfs TraversalMode = iota
	TraversalDfs
)

// OutputFormat selects a Formatter implementation (spec 4.8). Grounded on
// query.rs's OutputFormat.
type OutputFormat int

const (
	FormatTabs OutputFormat = iota
	FormatLines
	FormatList
	FormatCsv
	FormatJson
	FormatHtml
)

var outputFormatNames = map[string]OutputFormat{
	"tabs": FormatTabs, "lines": FormatLines, "list": FormatList,
	"csv": FormatCsv, "json": FormatJson, "html": FormatHtml,
}

// ParseOutputFormat resolves a raw INTO-clause format name
// (case-insensitive) to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	f, ok := outputFormatNames[strings.ToLower(s)]
	return f, ok
}

// Root is one FROM clause target: a starting path plus the depth, symlink,
// ignore-file, and traversal options that apply while walking it. Grounded
// on query.rs's Root struct.
type Root struct {
	Path         string
	Alias        string
	MinDepth     uint32
	MaxDepth     uint32
	Archives     bool
	Symlinks     bool
	Gitignore    *bool
	Hgignore     *bool
	Dockerignore *bool
	Traversal    TraversalMode
	Regexp       bool
}

// NewRoot builds a Root with the option defaults spec 4.5 describes: BFS
// traversal, no depth limit, archives and symlinks off, ignore-file
// handling left unset (the walker then uses the config file's setting,
// and an ignore file is not applied unless one of the two turns it on).
func NewRoot(path string) *Root {
	return &Root{Path: path, Traversal: TraversalBfs}
}

// Query is a single SELECT statement: its projected column expressions,
// FROM roots, WHERE predicate, ORDER BY expressions, and LIMIT/format
// options. Grounded on query.rs's Query struct.
type Query struct {
	Fields         []*Expr
	Roots          []*Root
	Expr           *Expr
	OrderingFields []*Expr
	OrderingAsc    []bool
	Limit          uint32
	OutputFormat   OutputFormat
}

// GetAllFields returns the set of fields referenced anywhere in the
// projected column list.
func (q *Query) GetAllFields() map[Field]struct{} {
	result := make(map[Field]struct{})
	for _, fieldExpr := range q.Fields {
		for f := range fieldExpr.GetRequiredFields() {
			result[f] = struct{}{}
		}
	}
	return result
}

// IsOrdered reports whether the query has an ORDER BY clause.
func (q *Query) IsOrdered() bool {
	return len(q.OrderingFields) > 0
}

// HasAggregateColumn reports whether any projected column calls an
// aggregate function, which collapses the whole result set to one row.
func (q *Query) HasAggregateColumn() bool {
	for _, fieldExpr := range q.Fields {
		if fieldExpr.HasAggregateFunction() {
			return true
		}
	}
	return false
}

