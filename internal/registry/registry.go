// Package registry tracks which classes each indexed file defines.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/afero"

	"github.com/phobologic/qxtags/internal/extract"
	"github.com/phobologic/qxtags/internal/lang"
	"github.com/phobologic/qxtags/internal/model"
	"github.com/phobologic/qxtags/internal/parse"
)

// ErrDuplicateClass is returned when two files define the same class name.
var ErrDuplicateClass = errors.New("duplicate class name")

// Registry maps files to the classes they define and class names to their
// records. For every tracked path p, the classes whose File is p are exactly
// the names listed in p's ownership entry.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	fs     afero.Fs
	parser *parse.Parser
	log    *slog.Logger

	classes map[string]*model.ClassRecord
	owned   map[string][]string
}

// New creates an empty Registry reading files from fsys.
func New(fsys afero.Fs, log *slog.Logger) (*Registry, error) {
	p, err := parse.New(lang.Qooxdoo)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		fs:      fsys,
		parser:  p,
		log:     log,
		classes: make(map[string]*model.ClassRecord),
		owned:   make(map[string][]string),
	}, nil
}

// CheckFile re-indexes the file at path, which must be absolute and clean.
// Every class the path previously contributed is retracted first. If the file
// no longer exists CheckFile returns false and a nil error, leaving the path
// untracked. Any other read error, a syntax error or a class name already
// owned by another file is returned as an error.
func (r *Registry) CheckFile(path string) (bool, error) {
	r.retract(path)

	source, err := afero.ReadFile(r.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		r.log.Debug("file not found", "path", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	defs, err := r.parser.Definitions(source)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		rec, warnings := extract.Class(path, def)
		for _, w := range warnings {
			r.log.Warn(w.Msg, "class", w.Class, "key", w.Key, "file", path, "line", w.Line)
		}

		if prev, ok := r.classes[rec.Name]; ok && prev.File != path {
			// Keep ownership of what was already inserted so nothing dangles.
			if len(names) > 0 {
				r.owned[path] = names
			}
			return false, fmt.Errorf("%w: %q defined in %s and %s", ErrDuplicateClass, rec.Name, prev.File, path)
		}
		r.classes[rec.Name] = rec
		if !slices.Contains(names, rec.Name) {
			names = append(names, rec.Name)
		}
	}

	r.owned[path] = names
	r.log.Debug("checked file", "path", path, "classes", len(names))
	return true, nil
}

func (r *Registry) retract(path string) {
	names, ok := r.owned[path]
	if !ok {
		return
	}
	for _, name := range names {
		delete(r.classes, name)
	}
	delete(r.owned, path)
}

// Class returns the record registered under name.
func (r *Registry) Class(name string) (*model.ClassRecord, bool) {
	rec, ok := r.classes[name]
	return rec, ok
}

// Owned returns the class names path currently contributes and whether the
// path is tracked at all.
func (r *Registry) Owned(path string) ([]string, bool) {
	names, ok := r.owned[path]
	return slices.Clone(names), ok
}

// Files returns every tracked path in sorted order.
func (r *Registry) Files() []string {
	return slices.Sorted(maps.Keys(r.owned))
}

// Classes returns every registered class, grouped by owning file in path
// order and by source order within a file.
func (r *Registry) Classes() []*model.ClassRecord {
	out := make([]*model.ClassRecord, 0, len(r.classes))
	for _, path := range r.Files() {
		for _, name := range r.owned[path] {
			out = append(out, r.classes[name])
		}
	}
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}
