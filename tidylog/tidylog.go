// Package tidylog parses the text log produced by clang-tidy into an ordered
// list of diagnostics.
//
// The log interleaves diagnostic header lines with source excerpts, caret
// markers and "note:" sub-diagnostics. Everything that is not a fresh header
// belongs to the context of the diagnostic it follows; this includes note
// lines, which match the header grammar but do not open a new diagnostic.
package tidylog

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sasq64/autotidy/replacer"
)

// A Diagnostic is one reviewable issue from the log.
type Diagnostic struct {
	Number  int    // 0-based sequence id, in log order
	Check   string // rule identifier, e.g. "modernize-use-auto"
	File    string // primary location; empty for summary lines
	Line    int    // 1-based
	Column  int    // 1-based, in bytes
	Message string
	Context string // verbatim excerpt lines that followed the header
	Edits   []replacer.Edit
}

// headerRE matches a diagnostic header. The location group is optional:
// clang-tidy emits summary lines such as "warning: 12 warnings generated
// [clang-diagnostic-...]" with no file position.
var headerRE = regexp.MustCompile(`^(?:(\S[^:]*):(\d+):(\d+):)?\s*(\w+):\s*(.*)\[([^\]]+)\]\s*$`)

// Parse reads a clang-tidy log and returns its diagnostics in log order.
// Malformed lines never fail the parse; they are kept as context.
func Parse(r io.Reader) ([]Diagnostic, error) {
	var (
		diags   []Diagnostic
		cur     Diagnostic
		open    bool
		context []string
	)
	emit := func() {
		if !open {
			context = context[:0]
			return
		}
		cur.Context = strings.Join(context, "\n")
		diags = append(diags, cur)
		open = false
		context = context[:0]
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		m := headerRE.FindStringSubmatch(line)
		if m == nil || m[4] == "note" {
			context = append(context, line)
			continue
		}
		emit()
		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		cur = Diagnostic{
			Number:  len(diags),
			Check:   m[6],
			File:    m[1],
			Line:    lineNo,
			Column:  colNo,
			Message: m[5],
		}
		open = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	emit()
	return diags, nil
}

// ParseFile parses the log at path.
func ParseFile(path string) ([]Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
