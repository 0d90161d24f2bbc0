// Package walk implements the traversal driver of spec 4.5: BFS/DFS
// directory descent per ast.Root, depth policy, symlink-loop guarding,
// ignore-file filtering, and ZIP-family archive descent. Grounded on
// original_source/src/searcher.rs's visit_dirs (the queue/stack/depth
// shape) generalized from its original single-threaded println driver
// into a callback-based Entry stream any evaluator can consume.
package walk

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/attr"
	"github.com/go-fselect/fselect/internal/config"
	"github.com/go-fselect/fselect/internal/errs"
)

// Entry is one visited row: a Bundle ready for field extraction, plus
// the root alias it was reached through (for correlated sub-queries,
// spec 4.6) and its depth from the root.
type Entry struct {
	Bundle *attr.Bundle
	Alias  string
	Depth  uint32
	IsDir  bool
}

// Visitor is called once per visited entry. Returning false stops the
// walk early (spec 4.7's LIMIT N, checked at entry boundaries).
type Visitor func(Entry) (more bool)

// ErrorHandler is called for each per-path walk failure (spec 7's
// WalkError policy: logged unless the caller suppresses it).
type ErrorHandler func(error)

// Walker drives traversal over one or more ast.Root values.
type Walker struct {
	cfg     *config.Config
	onError ErrorHandler
}

// New builds a Walker backed by cfg's extension classification tables
// and ignore-file defaults.
func New(cfg *config.Config, onError ErrorHandler) *Walker {
	if onError == nil {
		onError = func(error) {}
	}
	return &Walker{cfg: cfg, onError: onError}
}

// resolveIgnoreOption applies a query-level override (set by the
// "gitignore"/"hgignore"/"dockerignore" FROM-clause keyword) over the
// config.toml default, matching query.rs's Root.gitignore: Option<bool>
// and config.rs's Config.gitignore: Option<bool> fields — neither is
// respected unless explicitly turned on somewhere.
func (w *Walker) resolveIgnoreOption(queryOption, configDefault *bool) bool {
	if queryOption != nil {
		return *queryOption
	}
	return configDefault != nil && *configDefault
}

// queueItem is one pending (dir, depth) pair, shared by both the BFS
// queue and the DFS stack.
type queueItem struct {
	path  string
	depth uint32
}

// Walk visits root, calling visit for every entry accepted by depth
// policy and ignore filters, until ctx is canceled or visit returns
// false. Grounded on searcher.rs's visit_dirs, generalized from
// recursion (DFS-only in the original) to an explicit queue/stack so
// both spec 4.5 traversal modes share one implementation.
func (w *Walker) Walk(ctx context.Context, root *ast.Root, visit Visitor) {
	gitignores := newGitignoreSet()
	useGitignore := w.resolveIgnoreOption(root.Gitignore, w.cfg.Gitignore)
	if useGitignore {
		gitignores.searchUpstream(root.Path)
	}

	useHgignore := w.resolveIgnoreOption(root.Hgignore, w.cfg.Hgignore)
	var hgFilters []hgignoreFilter
	if useHgignore {
		hgFilters = searchUpstreamHgignore(root.Path)
	}

	useDockerignore := w.resolveIgnoreOption(root.Dockerignore, w.cfg.Dockerignore)
	var dockerFilters []dockerignoreFilter
	dockerLoaded := false

	visited := make(map[string]bool)

	items := []queueItem{{path: root.Path, depth: 0}}

	pop := func() (queueItem, bool) {
		if len(items) == 0 {
			return queueItem{}, false
		}
		if root.Traversal == ast.TraversalDfs {
			last := items[len(items)-1]
			items = items[:len(items)-1]
			return last, true
		}
		first := items[0]
		items = items[1:]
		return first, true
	}

	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := pop()
		if !ok {
			return
		}

		info, err := os.Lstat(item.path)
		if err != nil {
			w.onError(errs.NewWalkError(item.path, err))
			continue
		}

		isDir := info.IsDir()
		if info.Mode()&os.ModeSymlink != 0 && root.Symlinks {
			if target, err := os.Stat(item.path); err == nil {
				isDir = target.IsDir()
			}
		}
		if isDir {
			if resolved, ok := resolveSymlinkLoop(item.path, root.Symlinks, visited); !ok {
				continue
			} else if resolved != "" {
				visited[resolved] = true
			}
		}

		if useGitignore {
			gitignores.update(filepath.Dir(item.path))
		}
		if item.path != root.Path && w.isIgnored(item.path, isDir, gitignores, useGitignore, hgFilters, useHgignore, dockerFilters, useDockerignore) {
			continue
		}

		if useDockerignore && !dockerLoaded {
			dockerFilters = loadDockerignore(root.Path)
			dockerLoaded = true
		}

		if item.depth > 0 && item.depth >= root.MinDepth {
			more := visit(Entry{
				Bundle: attr.New(item.path, w.cfg),
				Alias:  root.Alias,
				Depth:  item.depth,
				IsDir:  isDir,
			})
			if !more {
				return
			}
		}

		if root.Archives && !isDir && isZipArchive(item.path, w.cfg) {
			w.descendArchive(item.path, root.Alias, item.depth+1, visit)
		}

		if !isDir {
			continue
		}
		if root.MaxDepth > 0 && item.depth+1 > root.MaxDepth {
			continue
		}

		children, err := os.ReadDir(item.path)
		if err != nil {
			w.onError(errs.NewWalkError(item.path, err))
			continue
		}
		for _, child := range children {
			childPath := filepath.Join(item.path, child.Name())
			if child.Type()&os.ModeSymlink != 0 && !root.Symlinks {
				continue
			}
			items = append(items, queueItem{path: childPath, depth: item.depth + 1})
		}
	}
}

// resolveSymlinkLoop reports whether dir should be descended into: real
// directories always proceed; a symlinked directory is only followed
// when followSymlinks is set, and its canonical target must not already
// be in visited (spec 4.5's "bounded symlink loops").
func resolveSymlinkLoop(dir string, followSymlinks bool, visited map[string]bool) (resolved string, ok bool) {
	info, err := os.Lstat(dir)
	if err != nil {
		return "", true
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", true
	}
	if !followSymlinks {
		return "", false
	}
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", false
	}
	if visited[real] {
		return "", false
	}
	return real, true
}

func (w *Walker) isIgnored(
	path string, isDir bool,
	gitignores *gitignoreSet, useGitignore bool,
	hgFilters []hgignoreFilter, useHgignore bool,
	dockerFilters []dockerignoreFilter, useDockerignore bool,
) bool {
	if useGitignore {
		filters := gitignores.filtersFor(filepath.Dir(path))
		if matchesGitignore(filters, path, isDir) {
			return true
		}
	}
	if useHgignore && matchesHgignore(hgFilters, path) {
		return true
	}
	if useDockerignore && matchesDockerignore(dockerFilters, path) {
		return true
	}
	return false
}

var zipExtensions = []string{".zip", ".jar", ".war", ".ear"}

func isZipArchive(path string, cfg *config.Config) bool {
	ext := strings.ToLower(filepath.Ext(path))
	exts := zipExtensions
	if cfg != nil && len(cfg.IsZipArchive) > 0 {
		exts = cfg.IsZipArchive
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// descendArchive re-enters the driver on a ZIP-family member stream.
// Members are never themselves expanded as archives (spec 4.5: "no
// recursive archive expansion"), matching searcher.rs's single-level
// archive.by_index loop.
func (w *Walker) descendArchive(path, alias string, depth uint32, visit Visitor) {
	r, err := zip.OpenReader(path)
	if err != nil {
		w.onError(errs.NewWalkError(path, err))
		return
	}
	defer r.Close()

	for _, f := range r.File {
		member := attr.ArchiveMember{
			Name:     f.Name,
			Size:     f.UncompressedSize64,
			Mode:     uint32(f.Mode()),
			Modified: f.Modified,
		}
		memberPath := filepath.Join(path, f.Name)
		bundle := attr.NewArchiveMember(memberPath, member, w.cfg)
		if !visit(Entry{Bundle: bundle, Alias: alias, Depth: depth, IsDir: f.FileInfo().IsDir()}) {
			return
		}
	}
}
