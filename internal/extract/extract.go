// Package extract turns class-definition calls into class records.
package extract

import (
	"fmt"

	"github.com/phobologic/qxtags/internal/ast"
	"github.com/phobologic/qxtags/internal/lang"
	"github.com/phobologic/qxtags/internal/model"
	"github.com/phobologic/qxtags/internal/parse"
)

// Display names for the constructor and destructor methods.
const (
	ConstructorName = "[constructor]"
	DestructorName  = "[destructor]"
)

// Warning is an advisory problem found while extracting a class. It never
// stops extraction.
type Warning struct {
	Class string
	Key   string
	Line  int
	Msg   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: line %d: %s %q", w.Class, w.Line, w.Msg, w.Key)
}

type section int

const (
	sectionUnknown section = iota
	sectionExtend
	sectionInclude
	sectionImplement
	sectionConstruct
	sectionDestruct
	sectionStatics
	sectionMembers
	sectionProperties
	sectionEvents
	sectionType
	sectionEnvironment
	sectionDefer
)

var sectionKeys = map[string]section{
	"extend":      sectionExtend,
	"include":     sectionInclude,
	"implement":   sectionImplement,
	"construct":   sectionConstruct,
	"destruct":    sectionDestruct,
	"statics":     sectionStatics,
	"members":     sectionMembers,
	"properties":  sectionProperties,
	"events":      sectionEvents,
	"type":        sectionType,
	"environment": sectionEnvironment,
	"defer":       sectionDefer,
}

type handler func(b *builder, e ast.Entry)

var handlers = map[section]handler{
	sectionExtend:      handleExtend,
	sectionInclude:     referenceList(model.Include),
	sectionImplement:   referenceList(model.Implement),
	sectionConstruct:   namedMethod(ConstructorName),
	sectionDestruct:    namedMethod(DestructorName),
	sectionStatics:     plainEntries(model.Static),
	sectionMembers:     handleMembers,
	sectionProperties:  plainEntries(model.Property),
	sectionEvents:      plainEntries(model.Event),
	sectionType:        handleType,
	sectionEnvironment: ignore,
	sectionDefer:       ignore,
}

type builder struct {
	rec      *model.ClassRecord
	warnings []Warning
}

func (b *builder) warn(e ast.Entry, msg string) {
	b.warnings = append(b.warnings, Warning{
		Class: b.rec.Name,
		Key:   e.Name(),
		Line:  e.Line,
		Msg:   msg,
	})
}

// Class builds the record for one class definition found in file.
func Class(file string, def parse.Definition) (*model.ClassRecord, []Warning) {
	b := &builder{rec: &model.ClassRecord{
		File: file,
		Name: def.Name.Value,
		Line: def.Line,
	}}

	for _, e := range def.Body.Entries {
		h, ok := handlers[sectionKeys[e.Name()]]
		if !ok {
			b.warn(e, "unrecognized section")
			continue
		}
		h(b, e)
	}

	return b.rec, b.warnings
}

func ignore(*builder, ast.Entry) {}

func handleExtend(b *builder, e ast.Entry) {
	b.rec.Extend = &model.Reference{Name: refName(e.Value), Line: e.Value.Line()}
}

// refName regenerates the name a reference expression denotes. A string
// literal names the class it spells.
func refName(n ast.Node) string {
	if s, ok := n.(*ast.String); ok {
		return s.Value
	}
	return lang.CollapseWhitespace(n.Text())
}

// referenceList accepts a single reference or an array of references.
func referenceList(kind model.MemberKind) handler {
	return func(b *builder, e ast.Entry) {
		refs := []ast.Node{e.Value}
		if arr, ok := e.Value.(*ast.Array); ok {
			refs = arr.Elements
		}
		for _, r := range refs {
			b.rec.Add(model.Member{Name: refName(r), Kind: kind, Line: r.Line()})
		}
	}
}

func namedMethod(name string) handler {
	return func(b *builder, e ast.Entry) {
		m := model.Member{Name: name, Kind: model.Method, Line: e.Line}
		if fn, ok := e.Value.(*ast.Function); ok {
			m.Signature = fn.Signature()
		}
		b.rec.Add(m)
	}
}

func sectionObject(b *builder, e ast.Entry) (*ast.Object, bool) {
	obj, ok := e.Value.(*ast.Object)
	if !ok {
		b.warn(e, "section is not an object literal")
	}
	return obj, ok
}

func plainEntries(kind model.MemberKind) handler {
	return func(b *builder, e ast.Entry) {
		obj, ok := sectionObject(b, e)
		if !ok {
			return
		}
		for _, entry := range obj.Entries {
			b.rec.Add(model.Member{Name: entry.Name(), Kind: kind, Line: entry.Line})
		}
	}
}

func handleMembers(b *builder, e ast.Entry) {
	obj, ok := sectionObject(b, e)
	if !ok {
		return
	}
	for _, entry := range obj.Entries {
		m := model.Member{Name: entry.Name(), Line: entry.Line}
		if fn, ok := entry.Value.(*ast.Function); ok {
			m.Kind = model.Method
			m.Signature = fn.Signature()
		} else {
			m.Kind = model.Property
			m.Signature = "(=" + lang.CollapseWhitespace(entry.Value.Text()) + ")"
		}
		b.rec.Add(m)
	}
}

func handleType(b *builder, e ast.Entry) {
	text := e.Value.Text()
	if s, ok := e.Value.(*ast.String); ok {
		text = s.Value
	}
	switch model.ClassType(text) {
	case model.ClassAbstract:
		b.rec.Type = model.ClassAbstract
	case model.ClassSingleton:
		b.rec.Type = model.ClassSingleton
	}
}
