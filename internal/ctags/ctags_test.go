package ctags

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/qxtags/internal/model"
)

func TestHeader(t *testing.T) {
	t.Parallel()

	want := "!_TAG_FILE_FORMAT\t2\n" +
		"!_TAG_FILE_SORTED\t1\t/0=unsorted, 1=sorted/\n" +
		"!_TAG_PROGRAM_NAME\tqxtags\n" +
		"!_TAG_PROGRAM_VERSION\t1.2.3\n"
	if got := Header("qxtags", "1.2.3"); got != want {
		t.Errorf("Header mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	if got := Encode(nil, "qxtags", "dev"); got != Header("qxtags", "dev") {
		t.Errorf("Encode(nil) = %q", got)
	}
}

func TestEncodeClass(t *testing.T) {
	t.Parallel()

	classes := []*model.ClassRecord{{
		File:   "/src/app/Foo.js",
		Name:   "app.Foo",
		Line:   1,
		Extend: &model.Reference{Name: "qx.core.Object", Line: 2},
		Methods: []model.Member{
			{Name: "bar", Kind: model.Method, Line: 5, Signature: "()"},
		},
		Properties: []model.Member{
			{Name: "baz", Kind: model.Property, Line: 4, Signature: "(=null)"},
		},
		Includes: []model.Member{
			{Name: "app.MFoo", Kind: model.Include, Line: 3},
		},
	}}

	got := strings.Split(strings.TrimSuffix(Encode(classes, "qxtags", "dev"), "\n"), "\n")[4:]
	want := []string{
		"app.Foo\t/src/app/Foo.js\t1;\"\tc\tline:1",
		"qx.core.Object\t/src/app/Foo.js\t2;\"\tx\tline:2\tctype:app.Foo",
		"app.MFoo\t/src/app/Foo.js\t3;\"\tn\tline:3\tctype:app.Foo\taccess:public",
		"baz\t/src/app/Foo.js\t4;\"\tp\tline:4\tctype:app.Foo\taccess:public\tsignature:(=null)",
		"bar\t/src/app/Foo.js\t5;\"\tm\tline:5\tctype:app.Foo\taccess:public\tsignature:()",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeMemberOrderByLine(t *testing.T) {
	t.Parallel()

	classes := []*model.ClassRecord{{
		File: "/f.js",
		Name: "C",
		Line: 1,
		Methods: []model.Member{
			{Name: "m9", Kind: model.Method, Line: 9},
			{Name: "m2", Kind: model.Method, Line: 2},
		},
		Properties: []model.Member{
			{Name: "p5", Kind: model.Property, Line: 5},
		},
		Statics: []model.Member{
			{Name: "s2", Kind: model.Static, Line: 2},
		},
		Events: []model.Member{
			{Name: "e7", Kind: model.Event, Line: 7},
		},
		Implements: []model.Member{
			{Name: "I", Kind: model.Implement, Line: 3},
		},
	}}

	var names []string
	for _, line := range strings.Split(Encode(classes, "p", "v"), "\n")[5:] {
		if line == "" {
			continue
		}
		names = append(names, strings.SplitN(line, "\t", 2)[0])
	}
	// m2 and s2 share a line; section order breaks the tie.
	want := []string{"m2", "s2", "I", "p5", "e7", "m9"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeAccess(t *testing.T) {
	t.Parallel()

	classes := []*model.ClassRecord{{
		File: "/f.js",
		Name: "C",
		Line: 1,
		Methods: []model.Member{
			{Name: "__x", Kind: model.Method, Line: 2},
			{Name: "_x", Kind: model.Method, Line: 3},
			{Name: "x", Kind: model.Method, Line: 4},
		},
	}}

	out := Encode(classes, "p", "v")
	for _, want := range []string{
		"__x\t/f.js\t2;\"\tm\tline:2\tctype:C\taccess:protected\n",
		"_x\t/f.js\t3;\"\tm\tline:3\tctype:C\taccess:private\n",
		"x\t/f.js\t4;\"\tm\tline:4\tctype:C\taccess:public\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing record %q in:\n%s", want, out)
		}
	}
}

func TestEncodeKeepsClassOrder(t *testing.T) {
	t.Parallel()

	classes := []*model.ClassRecord{
		{File: "/b.js", Name: "Zed", Line: 1},
		{File: "/a.js", Name: "Alpha", Line: 3},
	}
	out := Encode(classes, "p", "v")
	if strings.Index(out, "Zed\t") > strings.Index(out, "Alpha\t") {
		t.Errorf("class order not preserved:\n%s", out)
	}
}
