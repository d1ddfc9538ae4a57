// Package diffview renders a colorized unified diff between an original file
// and its staged copy. It is the preview used when the operator has not
// configured an external diff command.
package diffview

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	headColor = color.New(color.Bold)
	hunkColor = color.New(color.FgCyan)
	delColor  = color.New(color.FgRed)
	addColor  = color.New(color.FgGreen)
	delEmph   = color.New(color.FgRed, color.Bold, color.Underline)
	addEmph   = color.New(color.FgGreen, color.Bold, color.Underline)
)

// A Viewer writes unified diffs to Out.
type Viewer struct {
	Out     io.Writer
	Context int // context lines per hunk; 0 means 3
}

// ShowDiff renders the differences between the files at orig and staged.
// Identical files produce no output.
func (v *Viewer) ShowDiff(_ context.Context, orig, staged string) error {
	a, err := os.ReadFile(orig)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(staged)
	if err != nil {
		return err
	}
	n := v.Context
	if n <= 0 {
		n = 3
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: orig,
		ToFile:   staged,
		Context:  n,
	})
	if err != nil {
		return fmt.Errorf("diffing %s: %w", orig, err)
	}
	v.render(text)
	return nil
}

// render colorizes the unified diff line by line. A single removed line
// directly followed by a single added line additionally gets its changed
// spans emphasized, wherever that pair sits in a hunk.
func (v *Viewer) render(text string) {
	lines := strings.SplitAfter(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case line == "":
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			headColor.Fprint(v.Out, line)
		case strings.HasPrefix(line, "@@"):
			hunkColor.Fprint(v.Out, line)
		case strings.HasPrefix(line, "-"):
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+") &&
				(i+2 >= len(lines) || !strings.HasPrefix(lines[i+2], "+")) &&
				(i == 0 || !strings.HasPrefix(lines[i-1], "-")) {
				v.renderPair(line, lines[i+1])
				i++
				continue
			}
			delColor.Fprint(v.Out, line)
		case strings.HasPrefix(line, "+"):
			addColor.Fprint(v.Out, line)
		default:
			fmt.Fprint(v.Out, line)
		}
	}
}

// renderPair emphasizes the intraline changes of a single removed/added line
// pair, so one-token fixes stand out inside long lines.
func (v *Viewer) renderPair(del, add string) {
	oldText := strings.TrimSuffix(del[1:], "\n")
	newText := strings.TrimSuffix(add[1:], "\n")

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	delColor.Fprint(v.Out, "-")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			delColor.Fprint(v.Out, d.Text)
		case diffmatchpatch.DiffDelete:
			delEmph.Fprint(v.Out, d.Text)
		}
	}
	fmt.Fprintln(v.Out)

	addColor.Fprint(v.Out, "+")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			addColor.Fprint(v.Out, d.Text)
		case diffmatchpatch.DiffInsert:
			addEmph.Fprint(v.Out, d.Text)
		}
	}
	fmt.Fprintln(v.Out)
}
