package patchfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.cpp")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustContents(t *testing.T, f *File) string {
	t.Helper()
	b, err := f.Contents()
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSingleInsertion(t *testing.T) {
	f := New(writeTemp(t, "abcde\n"))
	if err := f.Patch(2, 0, []byte("X")); err != nil {
		t.Fatal(err)
	}
	if got := mustContents(t, f); got != "abXcde\n" {
		t.Errorf("contents = %q, want %q", got, "abXcde\n")
	}
	if got := f.Translate(4); got != 5 {
		t.Errorf("Translate(4) = %d, want 5", got)
	}
	if got := f.Translate(2); got != 2 {
		t.Errorf("Translate(2) = %d, want 2 (at the anchor)", got)
	}
	if got := f.SizeChange(); got != 1 {
		t.Errorf("SizeChange = %d, want 1", got)
	}
}

const reorderSrc = "line one\nOur line 2\nThe third line\n\nThe actual 5th line\n"

const reorderWant = "(Almost) line one\nOur line second\nThe 3rd line\nNew contents for fourth line\nThe actual 5th line\n"

// The four edits of the reorder scenario, in original-file coordinates.
var reorderEdits = []struct {
	offset, length int
	text           string
}{
	{24, 5, "3rd"},                            // line 3: "third" -> "3rd"
	{18, 1, "second"},                         // line 2: "2" -> "second"
	{0, 0, "(Almost) "},                       // prepend to line 1
	{35, 0, "New contents for fourth line"},   // fill the empty line 4
}

func TestReorderableEdits(t *testing.T) {
	f := New(writeTemp(t, reorderSrc))
	for _, e := range reorderEdits {
		if err := f.Patch(e.offset, e.length, []byte(e.text)); err != nil {
			t.Fatalf("Patch(%d, %d, %q): %v", e.offset, e.length, e.text, err)
		}
	}
	if got := mustContents(t, f); got != reorderWant {
		t.Errorf("contents = %q, want %q", got, reorderWant)
	}
}

// Non-overlapping edits must produce the same bytes under any apply order.
func TestEditsCommute(t *testing.T) {
	perms := permutations(len(reorderEdits))
	for _, perm := range perms {
		f := New(writeTemp(t, reorderSrc))
		for _, i := range perm {
			e := reorderEdits[i]
			if err := f.Patch(e.offset, e.length, []byte(e.text)); err != nil {
				t.Fatalf("perm %v: Patch(%d, %d, %q): %v", perm, e.offset, e.length, e.text, err)
			}
		}
		if got := mustContents(t, f); got != reorderWant {
			t.Errorf("perm %v: contents = %q, want %q", perm, got, reorderWant)
		}
	}
}

func permutations(n int) [][]int {
	var out [][]int
	var rec func(cur, rest []int)
	rec = func(cur, rest []int) {
		if len(rest) == 0 {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i, v := range rest {
			next := make([]int, 0, len(rest)-1)
			next = append(next, rest[:i]...)
			next = append(next, rest[i+1:]...)
			rec(append(cur, v), next)
		}
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	rec(nil, all)
	return out
}

// Translate is the identity at and below an edit's anchor.
func TestTranslateMonotone(t *testing.T) {
	f := New(writeTemp(t, "0123456789"))
	if err := f.Patch(5, 2, []byte("long replacement")); err != nil {
		t.Fatal(err)
	}
	for q := 0; q <= 5; q++ {
		if got := f.Translate(q); got != q {
			t.Errorf("Translate(%d) = %d, want identity", q, got)
		}
	}
	if got := f.Translate(8); got != 8+len("long replacement")-2 {
		t.Errorf("Translate(8) = %d", got)
	}
}

func TestPatchOutOfRange(t *testing.T) {
	tests := []struct {
		offset, length int
	}{
		{7, 0},  // past end
		{0, 7},  // length overruns
		{5, 2},  // offset+length overruns
		{-1, 0}, // negative offset
		{0, -1}, // negative length
	}
	for _, tt := range tests {
		f := New(writeTemp(t, "abcdef"))
		err := f.Patch(tt.offset, tt.length, []byte("x"))
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Patch(%d, %d): want ErrOutOfRange, got %v", tt.offset, tt.length, err)
		}
		if got := mustContents(t, f); got != "abcdef" {
			t.Errorf("Patch(%d, %d): buffer modified to %q", tt.offset, tt.length, got)
		}
		if got := f.Translate(3); got != 3 {
			t.Errorf("Patch(%d, %d): ledger modified, Translate(3) = %d", tt.offset, tt.length, got)
		}
	}
}

func TestAppendAtEnd(t *testing.T) {
	f := New(writeTemp(t, "abc"))
	if err := f.Patch(3, 0, []byte("def")); err != nil {
		t.Fatal(err)
	}
	if got := mustContents(t, f); got != "abcdef" {
		t.Errorf("contents = %q, want %q", got, "abcdef")
	}
}

func TestPureDeletion(t *testing.T) {
	f := New(writeTemp(t, "abcdef"))
	if err := f.Patch(1, 3, nil); err != nil {
		t.Fatal(err)
	}
	if got := mustContents(t, f); got != "aef" {
		t.Errorf("contents = %q, want %q", got, "aef")
	}
	if got := f.SizeChange(); got != -3 {
		t.Errorf("SizeChange = %d, want -3", got)
	}
}

func TestFlushAndRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(path)
	// Never loaded: Flush is a no-op and must not create the renamed target.
	other := filepath.Join(dir, "b.cpp")
	f.Rename(other)
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(other); !os.IsNotExist(err) {
		t.Fatalf("Flush of unloaded file created %s", other)
	}

	f = New(path)
	if err := f.Patch(0, 5, []byte("goodbye")); err != nil {
		t.Fatal(err)
	}
	f.Rename(other)
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "goodbye\n" {
		t.Errorf("flushed %q, want %q", got, "goodbye\n")
	}
	// The original path is untouched.
	orig, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != "hello\n" {
		t.Errorf("original modified to %q", orig)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := New(writeTemp(t, "abcdef"))
	if err := f.Patch(0, 1, []byte("X")); err != nil {
		t.Fatal(err)
	}
	c := f.Clone()
	if err := c.Patch(3, 1, []byte("Y")); err != nil {
		t.Fatal(err)
	}
	if got := mustContents(t, f); got != "Xbcdef" {
		t.Errorf("original affected by clone's patch: %q", got)
	}
	if got := mustContents(t, c); got != "XbcYef" {
		t.Errorf("clone = %q, want %q", got, "XbcYef")
	}
}
