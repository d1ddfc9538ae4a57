package fixes

import (
	"strings"
	"testing"

	"github.com/sasq64/autotidy/tidylog"
)

func diagsOf(n int) []tidylog.Diagnostic {
	d := make([]tidylog.Diagnostic, n)
	for i := range d {
		d[i].Number = i
	}
	return d
}

func TestAttachPairing(t *testing.T) {
	doc := `
Diagnostics:
  - DiagnosticName: modernize-use-auto
    Replacements:
      - FilePath: /src/a.cpp
        Offset: 10
        Length: 3
        ReplacementText: auto
  - DiagnosticName: readability-foo
  - DiagnosticName: bugprone-bar
    Replacements:
      - FilePath: /src/b.cpp
        Offset: 0
        Length: 0
        ReplacementText: '#include <x>'
      - FilePath: /src/b.cpp
        Offset: 99
        Length: 1
        ReplacementText: ''
`
	diags := diagsOf(3)
	if err := Attach(diags, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if len(diags[0].Edits) != 1 {
		t.Fatalf("diag 0: %d edits, want 1", len(diags[0].Edits))
	}
	e := diags[0].Edits[0]
	if e.Path != "/src/a.cpp" || e.Offset != 10 || e.Length != 3 || e.Text != "auto" {
		t.Errorf("diag 0 edit = %+v", e)
	}
	if len(diags[1].Edits) != 0 {
		t.Errorf("diag 1: %d edits, want 0", len(diags[1].Edits))
	}
	if len(diags[2].Edits) != 2 {
		t.Fatalf("diag 2: %d edits, want 2", len(diags[2].Edits))
	}
	if diags[2].Edits[1].Text != "" || diags[2].Edits[1].Length != 1 {
		t.Errorf("diag 2 deletion edit = %+v", diags[2].Edits[1])
	}
}

// More fixes entries than logged diagnostics: extras are dropped.
func TestAttachExtraEntries(t *testing.T) {
	doc := `
Diagnostics:
  - Replacements:
      - {FilePath: a, Offset: 1, Length: 1, ReplacementText: x}
  - Replacements:
      - {FilePath: b, Offset: 2, Length: 2, ReplacementText: y}
`
	diags := diagsOf(1)
	if err := Attach(diags, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if len(diags[0].Edits) != 1 || diags[0].Edits[0].Path != "a" {
		t.Errorf("diag 0 edits = %+v", diags[0].Edits)
	}
}

// Fewer entries than diagnostics: the tail keeps empty edit lists.
func TestAttachFewerEntries(t *testing.T) {
	doc := `
Diagnostics:
  - Replacements:
      - {FilePath: a, Offset: 1, Length: 1, ReplacementText: x}
`
	diags := diagsOf(3)
	if err := Attach(diags, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if len(diags[1].Edits) != 0 || len(diags[2].Edits) != 0 {
		t.Errorf("tail diagnostics gained edits: %+v", diags)
	}
}

// The nested DiagnosticMessage form used by newer clang-tidy versions.
func TestAttachNestedMessage(t *testing.T) {
	doc := `
Diagnostics:
  - DiagnosticName: modernize-use-nullptr
    DiagnosticMessage:
      Message: use nullptr
      Replacements:
        - FilePath: /src/c.cpp
          Offset: 42
          Length: 4
          ReplacementText: nullptr
`
	diags := diagsOf(1)
	if err := Attach(diags, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if len(diags[0].Edits) != 1 || diags[0].Edits[0].Text != "nullptr" {
		t.Errorf("edits = %+v", diags[0].Edits)
	}
}

func TestSanitizeDoublesQuotedLinefeeds(t *testing.T) {
	in := "ReplacementText: 'int x;\nint y;'\nOffset: 3\n"
	want := "ReplacementText: 'int x;\n\nint y;'\nOffset: 3\n"
	if got := string(Sanitize([]byte(in))); got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeLeavesUnquotedAlone(t *testing.T) {
	in := "Diagnostics:\n  - Offset: 3\n"
	if got := string(Sanitize([]byte(in))); got != in {
		t.Errorf("Sanitize modified plain document: %q", got)
	}
}

// A sanitized document with an embedded linefeed parses and keeps the break.
func TestAttachSanitizedReplacement(t *testing.T) {
	doc := "Diagnostics:\n" +
		"  - Replacements:\n" +
		"      - FilePath: a.cpp\n" +
		"        Offset: 0\n" +
		"        Length: 0\n" +
		"        ReplacementText: 'first\n          second'\n"
	diags := diagsOf(1)
	if err := Attach(diags, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if len(diags[0].Edits) != 1 {
		t.Fatalf("edits = %+v", diags[0].Edits)
	}
	if got := diags[0].Edits[0].Text; !strings.Contains(got, "first\nsecond") {
		t.Errorf("replacement text = %q, want embedded newline preserved", got)
	}
}

func TestAttachBrokenYAML(t *testing.T) {
	if err := Attach(diagsOf(1), []byte("Diagnostics: [unclosed")); err == nil {
		t.Fatal("want hard error for malformed fixes document")
	}
}
