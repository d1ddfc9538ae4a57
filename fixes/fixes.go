// Package fixes parses the YAML fixes file emitted by clang-tidy
// (--export-fixes) and attaches each entry's replacements to the matching
// diagnostic from the log.
//
// The pairing is positional: the i-th Diagnostics entry in the fixes file
// belongs to the i-th diagnostic in the log. clang-tidy writes both in the
// same order, so no key matching is needed.
package fixes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sasq64/autotidy/replacer"
	"github.com/sasq64/autotidy/tidylog"
)

type document struct {
	Diagnostics []diagEntry `yaml:"Diagnostics"`
}

type diagEntry struct {
	Name         string        `yaml:"DiagnosticName"`
	Replacements []replacement `yaml:"Replacements"`
	// clang-tidy 9 and later nest the replacements one level down.
	Message *diagMessage `yaml:"DiagnosticMessage"`
}

type diagMessage struct {
	Replacements []replacement `yaml:"Replacements"`
}

type replacement struct {
	FilePath        string `yaml:"FilePath"`
	Offset          int    `yaml:"Offset"`
	Length          int    `yaml:"Length"`
	ReplacementText string `yaml:"ReplacementText"`
}

// Sanitize doubles every line feed found inside a single-quoted scalar.
// Some clang-tidy builds write replacement text containing raw newlines into
// single-quoted YAML strings, which the YAML grammar only allows as a doubled
// pair. A quote toggles the in-string state unless it is immediately followed
// by another quote.
func Sanitize(b []byte) []byte {
	out := make([]byte, 0, len(b)+32)
	inQuotes := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == '\'' && !(i+1 < len(b) && b[i+1] == '\'') {
			inQuotes = !inQuotes
		}
		out = append(out, c)
		if inQuotes && c == '\n' {
			out = append(out, '\n')
		}
	}
	return out
}

// Attach parses doc and appends the i-th entry's replacements to the i-th
// diagnostic's edit list. Entries beyond the end of diags are ignored;
// diagnostics beyond the end of the document keep empty edit lists.
// A document that still fails to parse after sanitation is a hard error.
func Attach(diags []tidylog.Diagnostic, doc []byte) error {
	var d document
	if err := yaml.Unmarshal(Sanitize(doc), &d); err != nil {
		return fmt.Errorf("parsing fixes: %w", err)
	}
	for i, entry := range d.Diagnostics {
		if i >= len(diags) {
			break
		}
		reps := entry.Replacements
		if len(reps) == 0 && entry.Message != nil {
			reps = entry.Message.Replacements
		}
		for _, rep := range reps {
			diags[i].Edits = append(diags[i].Edits, replacer.Edit{
				Path:   rep.FilePath,
				Offset: rep.Offset,
				Length: rep.Length,
				Text:   rep.ReplacementText,
			})
		}
	}
	return nil
}

// AttachFile reads the fixes file at path and attaches it to diags.
func AttachFile(diags []tidylog.Diagnostic, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Attach(diags, b)
}
