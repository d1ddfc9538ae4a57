// Package cmdrun invokes autotidy's external collaborators: the operator's
// diff command, the pager, and clang-tidy itself.
//
// Command templates are split into words with shell quoting rules rather than
// handed to a shell, so quoted paths and flags survive without an extra
// process in between.
package cmdrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// ErrLinterMissing reports that clang-tidy could not be found on PATH.
var ErrLinterMissing = errors.New("clang-tidy not found on PATH")

// SplitCommand splits a command line into argv words using shell quoting
// rules. Variable references expand to nothing; the template is not a script.
func SplitCommand(cmdline string) ([]string, error) {
	words, err := shell.Fields(cmdline, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("parsing command %q: %w", cmdline, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty command %q", cmdline)
	}
	return words, nil
}

// A Diff runs an external diff command built from a template carrying two
// %s placeholders for the original and the staged path, in that order.
type Diff struct {
	Template string // e.g. "diff -u --color=always %s %s"
	Stdout   io.Writer
	Stderr   io.Writer
}

// ShowDiff executes the templated command on (orig, staged). diff utilities
// exit 1 when the files differ; that is the expected case here and is not an
// error.
func (d *Diff) ShowDiff(ctx context.Context, orig, staged string) error {
	cmdline := d.Template
	if strings.Contains(cmdline, "%s") {
		cmdline = fmt.Sprintf(cmdline, orig, staged)
	} else {
		cmdline = fmt.Sprintf("%s %q %q", cmdline, orig, staged)
	}
	words, err := SplitCommand(cmdline)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	err = cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() == 1 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("running %q: %w", words[0], err)
	}
	return nil
}

// Pager pipes text through the operator's pager.
type Pager struct {
	Command string // empty: $PAGER, falling back to less
}

// Page blocks until the pager exits.
func (p *Pager) Page(ctx context.Context, text string) error {
	cmdline := p.Command
	if cmdline == "" {
		cmdline = os.Getenv("PAGER")
	}
	if cmdline == "" {
		cmdline = "less"
	}
	words, err := SplitCommand(cmdline)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running pager %q: %w", words[0], err)
	}
	return nil
}

// RunClangTidy lints source and writes the combined output to logPath.
// When fixesPath is non-empty the machine-readable fixes are exported there.
func RunClangTidy(ctx context.Context, source, headerFilter, fixesPath, logPath string) error {
	bin, err := exec.LookPath("clang-tidy")
	if err != nil {
		return ErrLinterMissing
	}
	var args []string
	if headerFilter != "" {
		args = append(args, "-header-filter="+headerFilter)
	}
	if fixesPath != "" {
		args = append(args, "--export-fixes="+fixesPath)
	}
	args = append(args, source)

	out, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", logPath, err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		// clang-tidy exits non-zero when warnings are treated as errors;
		// the log is still complete and reviewable.
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return fmt.Errorf("running clang-tidy: %w", err)
		}
	}
	return out.Close()
}
