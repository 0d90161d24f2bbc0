package attr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/config"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestGetNameAndPath(t *testing.T) {
	path := writeTemp(t, "report.go", "package main\n")
	b := New(path, config.Default())

	name, err := b.Get(ast.FieldName)
	if err != nil {
		t.Fatalf("Get(name): %v", err)
	}
	if name.ToString() != "report.go" {
		t.Fatalf("expected name report.go, got %q", name.ToString())
	}

	p, err := b.Get(ast.FieldPath)
	if err != nil {
		t.Fatalf("Get(path): %v", err)
	}
	if p.ToString() != path {
		t.Fatalf("expected path %q, got %q", path, p.ToString())
	}
}

func TestGetSizeMatchesFileContent(t *testing.T) {
	path := writeTemp(t, "data.bin", "0123456789")
	b := New(path, config.Default())

	size, err := b.Get(ast.FieldSize)
	if err != nil {
		t.Fatalf("Get(size): %v", err)
	}
	if size.ToInt() != 10 {
		t.Fatalf("expected size 10, got %d", size.ToInt())
	}
}

func TestIsHiddenDotfile(t *testing.T) {
	path := writeTemp(t, ".hidden", "x")
	b := New(path, config.Default())

	hidden, err := b.Get(ast.FieldIsHidden)
	if err != nil {
		t.Fatalf("Get(is_hidden): %v", err)
	}
	if !hidden.ToBool() {
		t.Fatal("expected .hidden to report is_hidden true")
	}

	visible := New(writeTemp(t, "visible.txt", "x"), config.Default())
	v, _ := visible.Get(ast.FieldIsHidden)
	if v.ToBool() {
		t.Fatal("expected visible.txt to report is_hidden false")
	}
}

func TestClassFieldUsesConfigExtensions(t *testing.T) {
	path := writeTemp(t, "main.go", "package main\n")
	b := New(path, config.Default())

	isSource, err := b.Get(ast.FieldIsSource)
	if err != nil {
		t.Fatalf("Get(is_source): %v", err)
	}
	if !isSource.ToBool() {
		t.Fatal("expected main.go to be classified as source")
	}

	isImage, _ := b.Get(ast.FieldIsImage)
	if isImage.ToBool() {
		t.Fatal("expected main.go not to be classified as an image")
	}
}

func TestStatIsCachedAcrossCalls(t *testing.T) {
	path := writeTemp(t, "cached.txt", "hello")
	b := New(path, config.Default())

	if _, err := b.Get(ast.FieldSize); err != nil {
		t.Fatalf("first Get(size): %v", err)
	}
	first := b.info

	if _, err := b.Get(ast.FieldModified); err != nil {
		t.Fatalf("second Get(modified): %v", err)
	}
	if b.info != first {
		t.Fatal("expected the cached os.FileInfo to be reused, not re-stat'd")
	}
}

func TestArchiveMemberOnlyExposesArchiveSafeFields(t *testing.T) {
	b := NewArchiveMember("readme.txt", ArchiveMember{Name: "readme.txt", Size: 42}, config.Default())

	size, err := b.Get(ast.FieldSize)
	if err != nil {
		t.Fatalf("Get(size): %v", err)
	}
	if size.ToInt() != 42 {
		t.Fatalf("expected archive member size 42, got %d", size.ToInt())
	}

	width, err := b.Get(ast.FieldWidth)
	if err != nil {
		t.Fatalf("Get(width): %v", err)
	}
	if width.ToString() != "" {
		t.Fatalf("expected width to be empty for an archive member, got %q", width.ToString())
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[uint64]string{
		512:        "512 B",
		1536:       "1.5 KiB",
		1048576:    "1.0 MiB",
		1073741824: "1.0 GiB",
	}
	for size, want := range cases {
		if got := formatSize(size); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", size, got, want)
		}
	}
}
