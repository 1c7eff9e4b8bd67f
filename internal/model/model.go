// Package model defines core data structures for qxtags.
package model

import "strings"

// ClassType is the classification declared by a class body's `type` section.
type ClassType string

const (
	ClassNone      ClassType = ""
	ClassAbstract  ClassType = "abstract"
	ClassSingleton ClassType = "singleton"
)

// MemberKind indicates which class-body section a member came from.
type MemberKind string

const (
	Include   MemberKind = "include"
	Implement MemberKind = "implement"
	Method    MemberKind = "method"
	Property  MemberKind = "property"
	Static    MemberKind = "static"
	Event     MemberKind = "event"
)

// Access is the visibility inferred from a member's leading underscores.
type Access string

const (
	Public    Access = "public"
	Private   Access = "private"
	Protected Access = "protected"
)

// AccessOf infers the access level from the naming convention:
// "__x" is protected, "_x" is private, anything else is public.
func AccessOf(name string) Access {
	switch {
	case strings.HasPrefix(name, "__"):
		return Protected
	case strings.HasPrefix(name, "_"):
		return Private
	default:
		return Public
	}
}

// Member is a single extracted class member.
type Member struct {
	Name      string
	Kind      MemberKind
	Line      int
	Signature string
}

// Reference names another class, e.g. a superclass.
type Reference struct {
	Name string
	Line int
}

// ClassRecord is one class-definition call found in an indexed file.
type ClassRecord struct {
	File       string
	Name       string
	Line       int
	Type       ClassType
	Extend     *Reference
	Includes   []Member
	Implements []Member
	Methods    []Member
	Properties []Member
	Statics    []Member
	Events     []Member
}

// Members returns every member across all six kinds, in section order:
// includes, implements, methods, properties, statics, events.
func (c *ClassRecord) Members() []Member {
	n := len(c.Includes) + len(c.Implements) + len(c.Methods) +
		len(c.Properties) + len(c.Statics) + len(c.Events)
	out := make([]Member, 0, n)
	out = append(out, c.Includes...)
	out = append(out, c.Implements...)
	out = append(out, c.Methods...)
	out = append(out, c.Properties...)
	out = append(out, c.Statics...)
	out = append(out, c.Events...)
	return out
}

// Add appends m to the collection matching its kind.
func (c *ClassRecord) Add(m Member) {
	switch m.Kind {
	case Include:
		c.Includes = append(c.Includes, m)
	case Implement:
		c.Implements = append(c.Implements, m)
	case Method:
		c.Methods = append(c.Methods, m)
	case Property:
		c.Properties = append(c.Properties, m)
	case Static:
		c.Statics = append(c.Statics, m)
	case Event:
		c.Events = append(c.Events, m)
	}
}
