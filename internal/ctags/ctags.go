// Package ctags encodes class records as an extended-format tags file.
package ctags

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/phobologic/qxtags/internal/model"
)

// Kind letters used in the tags file.
const (
	KindClass     = 'c'
	KindExtends   = 'x'
	KindInclude   = 'n'
	KindImplement = 'i'
	KindMethod    = 'm'
	KindProperty  = 'p'
	KindStatic    = 's'
	KindEvent     = 'e'
)

var memberKinds = map[model.MemberKind]byte{
	model.Include:   KindInclude,
	model.Implement: KindImplement,
	model.Method:    KindMethod,
	model.Property:  KindProperty,
	model.Static:    KindStatic,
	model.Event:     KindEvent,
}

// Header returns the four pseudo-tag lines that open every tags file.
func Header(program, version string) string {
	var b strings.Builder
	b.WriteString("!_TAG_FILE_FORMAT\t2\n")
	b.WriteString("!_TAG_FILE_SORTED\t1\t/0=unsorted, 1=sorted/\n")
	fmt.Fprintf(&b, "!_TAG_PROGRAM_NAME\t%s\n", program)
	fmt.Fprintf(&b, "!_TAG_PROGRAM_VERSION\t%s\n", version)
	return b.String()
}

// Encode renders the header followed by the records of every class, in the
// order given. Within a class, members of all kinds are ordered by line.
func Encode(classes []*model.ClassRecord, program, version string) string {
	var b strings.Builder
	b.WriteString(Header(program, version))

	for _, c := range classes {
		writeRecord(&b, record{name: c.Name, file: c.File, line: c.Line, kind: KindClass})

		if c.Extend != nil {
			writeRecord(&b, record{
				name:  c.Extend.Name,
				file:  c.File,
				line:  c.Extend.Line,
				kind:  KindExtends,
				class: c.Name,
			})
		}

		members := c.Members()
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Line < members[j].Line
		})
		for _, m := range members {
			writeRecord(&b, record{
				name:      m.Name,
				file:      c.File,
				line:      m.Line,
				kind:      memberKinds[m.Kind],
				class:     c.Name,
				access:    model.AccessOf(m.Name),
				signature: m.Signature,
			})
		}
	}

	return b.String()
}

type record struct {
	name      string
	file      string
	line      int
	kind      byte
	class     string
	access    model.Access
	signature string
}

func writeRecord(b *strings.Builder, r record) {
	line := strconv.Itoa(r.line)
	b.WriteString(r.name)
	b.WriteByte('\t')
	b.WriteString(r.file)
	b.WriteByte('\t')
	b.WriteString(line)
	b.WriteString(";\"\t")
	b.WriteByte(r.kind)
	b.WriteString("\tline:")
	b.WriteString(line)
	if r.class != "" {
		b.WriteString("\tctype:")
		b.WriteString(r.class)
	}
	if r.access != "" {
		b.WriteString("\taccess:")
		b.WriteString(string(r.access))
	}
	if r.signature != "" {
		b.WriteString("\tsignature:")
		b.WriteString(r.signature)
	}
	b.WriteByte('\n')
}
