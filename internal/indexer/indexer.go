// Package indexer walks directory trees and keeps a registry in step with them.
package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/phobologic/qxtags/internal/lang"
	"github.com/phobologic/qxtags/internal/parse"
	"github.com/phobologic/qxtags/internal/registry"
)

// Observer receives directory notifications synchronously, in traversal
// order, from inside the call that produced them.
type Observer interface {
	DirectoryAdded(path string)
	DirectoryRemoved(path string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Added   func(path string)
	Removed func(path string)
}

func (o ObserverFuncs) DirectoryAdded(path string) {
	if o.Added != nil {
		o.Added(path)
	}
}

func (o ObserverFuncs) DirectoryRemoved(path string) {
	if o.Removed != nil {
		o.Removed(path)
	}
}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
}

// Indexer feeds source files under scanned directories to a Registry and
// remembers which directories it has scanned.
type Indexer struct {
	fs    afero.Fs
	reg   *registry.Registry
	log   *slog.Logger
	known map[string]struct{}

	ignoreRoot string
	ignore     *ignore.GitIgnore

	onFileError func(path string, err error)
}

// New creates an Indexer over reg. Paths handed to it must be absolute and clean.
func New(fsys afero.Fs, reg *registry.Registry, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Indexer{
		fs:    fsys,
		reg:   reg,
		log:   log,
		known: make(map[string]struct{}),
	}
}

// Fs returns the filesystem the indexer reads.
func (ix *Indexer) Fs() afero.Fs {
	return ix.fs
}

// Registry returns the registry the indexer feeds.
func (ix *Indexer) Registry() *registry.Registry {
	return ix.reg
}

// SetIgnore makes the indexer skip paths under root matched by gi.
func (ix *Indexer) SetIgnore(root string, gi *ignore.GitIgnore) {
	ix.ignoreRoot = root
	ix.ignore = gi
}

// SetFileErrorHandler makes syntax errors and duplicate class names in
// individual files non-fatal: h is called with the failing path and the scan
// goes on. Without a handler those errors abort Scan, Remove and Check.
func (ix *Indexer) SetFileErrorHandler(h func(path string, err error)) {
	ix.onFileError = h
}

// Check re-checks a single source file into the registry.
func (ix *Indexer) Check(path string) error {
	_, err := ix.reg.CheckFile(path)
	if err == nil || ix.onFileError == nil {
		return err
	}
	if errors.Is(err, parse.ErrSyntax) || errors.Is(err, registry.ErrDuplicateClass) {
		ix.onFileError(path, err)
		return nil
	}
	return err
}

// LoadGitignore compiles root/.gitignore. It returns nil if there is none.
func LoadGitignore(fsys afero.Fs, root string) (*ignore.GitIgnore, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(root, ".gitignore"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading gitignore: %w", err)
	}
	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...), nil
}

// Known reports whether dir has been scanned.
func (ix *Indexer) Known(dir string) bool {
	_, ok := ix.known[dir]
	return ok
}

// Scan walks root breadth-first. Source files are checked into the registry,
// directories that vanished are removed, and every directory scanned for the
// first time is reported to obs (which may be nil) as added.
//
// Known subdirectories and tracked files that are no longer listed are
// revisited, so deletions below root are retracted by rescanning root.
func (ix *Indexer) Scan(root string, obs Observer) error {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	queue := []string{root}
	visited := make(map[string]struct{})

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		if _, ok := visited[dir]; ok {
			continue
		}
		visited[dir] = struct{}{}

		// A directory replaced by a file is as gone as a deleted one.
		info, err := ix.fs.Stat(dir)
		if Gone(err) || (err == nil && !info.IsDir()) {
			if _, err := ix.Remove(dir, obs); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", dir, err)
		}

		entries, err := afero.ReadDir(ix.fs, dir)
		if err != nil {
			return fmt.Errorf("listing %s: %w", dir, err)
		}

		present := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			info, err := ix.fs.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue // dangling symlink, or removed since listing
			}
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			if info.IsDir() {
				// Symlinked directories can form cycles.
				if entry.Mode()&os.ModeSymlink != 0 || ix.Excluded(path, true) {
					continue
				}
				present[path] = struct{}{}
				queue = append(queue, path)
				continue
			}

			if !info.Mode().IsRegular() || !lang.IsSource(path) || ix.Excluded(path, false) {
				continue
			}
			present[path] = struct{}{}
			if err := ix.Check(path); err != nil {
				return err
			}
		}

		var vanished []string
		for child := range ix.known {
			if filepath.Dir(child) != dir || child == dir {
				continue
			}
			if _, ok := present[child]; !ok {
				vanished = append(vanished, child)
			}
		}
		slices.Sort(vanished)
		queue = append(queue, vanished...)
		for _, file := range ix.reg.Files() {
			if filepath.Dir(file) != dir {
				continue
			}
			if _, ok := present[file]; !ok {
				if err := ix.Check(file); err != nil {
					return err
				}
			}
		}

		if _, ok := ix.known[dir]; !ok {
			ix.known[dir] = struct{}{}
			ix.log.Debug("directory added", "path", dir)
			obs.DirectoryAdded(dir)
		}
	}

	return nil
}

// Remove forgets the vanished directory path and everything below it:
// known subdirectories are dropped and every tracked file under path is
// re-checked, which retracts it. It reports false, doing nothing, when path
// is not a known directory.
func (ix *Indexer) Remove(path string, obs Observer) (bool, error) {
	if _, ok := ix.known[path]; !ok {
		return false, nil
	}
	if obs == nil {
		obs = ObserverFuncs{}
	}

	for dir := range ix.known {
		if within(dir, path) {
			delete(ix.known, dir)
		}
	}
	for _, file := range ix.reg.Files() {
		if !within(file, path) {
			continue
		}
		if err := ix.Check(file); err != nil {
			return true, err
		}
	}

	ix.log.Debug("directory removed", "path", path)
	obs.DirectoryRemoved(path)
	return true, nil
}

// Excluded reports whether scans skip path: VCS and vendor directories, and
// anything the configured gitignore matches.
func (ix *Indexer) Excluded(path string, isDir bool) bool {
	if isDir {
		if _, skip := skipDirs[filepath.Base(path)]; skip {
			return true
		}
	}
	if ix.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(ix.ignoreRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return ix.ignore.MatchesPath(rel)
}

// Gone reports whether err from a stat means the path no longer exists,
// including when one of its parents has become a file.
func Gone(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
