// Package triage drives the interactive walk over the diagnostics of one
// clang-tidy run. For each diagnostic it stages the suggested edits onto
// temporary copies, shows the diff, reads one key and dispatches the
// operator's decision.
package triage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sasq64/autotidy/checkdoc"
	"github.com/sasq64/autotidy/replacer"
	"github.com/sasq64/autotidy/tidyconf"
	"github.com/sasq64/autotidy/tidylog"
)

// StagingSuffix is appended to a file's path to name the copy carrying the
// current diagnostic's pending edits.
const StagingSuffix = ".temp"

// A KeyReader returns the next key typed by the operator.
type KeyReader interface {
	ReadKey() (byte, error)
}

// A DiffRunner shows the differences between a file and its staged copy.
type DiffRunner interface {
	ShowDiff(ctx context.Context, orig, staged string) error
}

// A Pager displays long-form text, typically via the operator's pager.
type Pager interface {
	Page(ctx context.Context, text string) error
}

// Session is the mutable state of one autotidy run, threaded through the
// controller explicitly.
type Session struct {
	CurrentDir  string // trailing separator; stripped from displayed paths
	HeaderStrip int    // leading path components stripped from displayed paths
	ConfPath    string
	Conf        *tidyconf.Store
	Skipped     map[string]bool

	// Tallies for the end-of-run summary.
	Applied int // diagnostics whose fix was committed
	Marked  int // NOLINT/TODO insertions
	Muted   int // checks added to the ignore set
	Quit    bool
}

// NewSession returns a Session with an empty skip set.
func NewSession(conf *tidyconf.Store, confPath string) *Session {
	return &Session{
		Conf:     conf,
		ConfPath: confPath,
		Skipped:  make(map[string]bool),
	}
}

// Controller walks diagnostics and records operator decisions.
type Controller struct {
	Session  *Session
	Replacer *replacer.Replacer
	Keys     KeyReader
	Diff     DiffRunner
	Pager    Pager
	Out      io.Writer
}

var (
	plain     = color.New(color.FgWhite)
	fileColor = color.New(color.FgYellow)
	check     = color.New(color.FgHiMagenta)
	message   = color.New(color.FgHiGreen)
	prompt    = color.New(color.FgCyan)
	keyEcho   = color.New(color.BgWhite, color.FgBlack)
	separator = color.New(color.FgBlue)
	errText   = color.New(color.FgRed)
)

// Walk reviews every diagnostic in order, stopping early when the operator
// quits. Failures on a single diagnostic abandon it and continue the walk.
func (c *Controller) Walk(ctx context.Context, diags []tidylog.Diagnostic) {
	for i := range diags {
		if err := c.handle(ctx, &diags[i]); err != nil {
			errText.Fprintf(c.Out, "error: %v\n", err)
			slog.ErrorContext(ctx, "diagnostic abandoned",
				slog.Int("number", diags[i].Number), slog.Any("error", err))
		}
		if c.Session.Quit {
			return
		}
	}
}

// handle runs the state machine for one diagnostic: filter, print, stage,
// prompt, dispatch, cleanup.
func (c *Controller) handle(ctx context.Context, d *tidylog.Diagnostic) error {
	s := c.Session
	if s.Conf.Ignored(d.Check) || d.File == "" || s.Skipped[d.File] {
		return nil
	}
	c.printHeader(d)

	staged := make(map[string]string) // original path -> staging path
	var order []string                // staging order, for stable display
	cleanup := func() {
		for _, orig := range order {
			temp, ok := staged[orig]
			if !ok {
				continue
			}
			if err := c.Replacer.RemoveFile(temp); err != nil {
				slog.WarnContext(ctx, "removing staging file",
					slog.String("path", temp), slog.Any("error", err))
			}
			delete(staged, orig)
		}
	}

	for _, e := range d.Edits {
		temp, ok := staged[e.Path]
		if !ok {
			temp = e.Path + StagingSuffix
			if err := c.Replacer.CopyFile(temp, e.Path); err != nil {
				cleanup()
				return err
			}
			staged[e.Path] = temp
			order = append(order, e.Path)
		}
		st := e
		st.Path = temp
		if err := c.Replacer.Apply(st); err != nil {
			cleanup()
			return err
		}
	}
	hasPatch := len(staged) > 0

	for {
		for _, orig := range order {
			if err := c.Diff.ShowDiff(ctx, orig, staged[orig]); err != nil {
				cleanup()
				return err
			}
		}
		c.printPrompt(hasPatch)
		key, err := c.Keys.ReadKey()
		if err != nil {
			cleanup()
			return err
		}
		keyEcho.Fprintf(c.Out, "[%c]", key)
		fmt.Fprintln(c.Out)

		done, err := c.dispatch(ctx, d, key, staged, order, hasPatch)
		if err != nil {
			cleanup()
			return err
		}
		if done {
			break
		}
	}

	cleanup()
	separator.Fprintln(c.Out, strings.Repeat("-", 60))
	return nil
}

// dispatch performs the action bound to key and reports whether the prompt
// loop for this diagnostic is finished.
func (c *Controller) dispatch(ctx context.Context, d *tidylog.Diagnostic, key byte,
	staged map[string]string, order []string, hasPatch bool) (bool, error) {
	s := c.Session
	switch key {
	case 'a':
		if !hasPatch {
			return false, nil
		}
		for _, orig := range order {
			temp, ok := staged[orig]
			if !ok {
				continue
			}
			if err := c.Replacer.CopyFile(orig, temp); err != nil {
				return false, err
			}
			if err := c.Replacer.RemoveFile(temp); err != nil {
				return false, err
			}
			delete(staged, orig)
		}
		s.Applied++
		return true, nil
	case 'n', 'N', 't':
		text := " //NOLINT"
		switch key {
		case 'N':
			text = fmt.Sprintf(" //NOLINT(%s)", d.Check)
		case 't':
			text = fmt.Sprintf(" //TODO(%s)", d.Check)
		}
		if err := c.Replacer.AppendToLine(d.File, d.Line, text); err != nil {
			return false, err
		}
		s.Marked++
		return true, nil
	case 'i':
		s.Conf.Ignore(d.Check)
		if err := s.Conf.Save(s.ConfPath); err != nil {
			return false, err
		}
		s.Muted++
		return true, nil
	case 's':
		return true, nil
	case 'S':
		s.Skipped[d.File] = true
		return true, nil
	case 'd':
		if err := c.Pager.Page(ctx, checkdoc.Lookup(d.Check)); err != nil {
			errText.Fprintf(c.Out, "pager: %v\n", err)
		}
		return false, nil
	case 'q':
		s.Quit = true
		return true, nil
	case '?', 'h':
		c.printHelp()
		return false, nil
	default:
		return false, nil
	}
}

func (c *Controller) printHeader(d *tidylog.Diagnostic) {
	fmt.Fprintln(c.Out)
	plain.Fprintf(c.Out, "#%d ", d.Number)
	fileColor.Fprintf(c.Out, "%s", c.displayName(d.File))
	plain.Fprintf(c.Out, ":%d", d.Line)
	check.Fprintf(c.Out, " [%s]\n", d.Check)
	message.Fprintf(c.Out, "%s\n", d.Message)
	if d.Context != "" {
		fmt.Fprintln(c.Out, d.Context)
	}
}

// displayName shortens a path for display: the working directory prefix goes,
// then HeaderStrip leading components.
func (c *Controller) displayName(path string) string {
	name := strings.TrimPrefix(path, c.Session.CurrentDir)
	for range c.Session.HeaderStrip {
		i := strings.IndexByte(name, '/')
		if i < 0 {
			break
		}
		name = name[i+1:]
	}
	return name
}

func (c *Controller) printPrompt(hasPatch bool) {
	apply := ""
	if hasPatch {
		apply = "[a]pply patch, "
	}
	prompt.Fprintf(c.Out, "%s[t]odo marker, [i]gnore, [s/S]kip (file), [n/N]olint, [d]ocs, [q]uit ? ", apply)
}

func (c *Controller) printHelp() {
	prompt.Fprint(c.Out, `
  a   apply the suggested fix
  n   append //NOLINT to the reported line
  N   append //NOLINT(<check>) to the reported line
  t   append //TODO(<check>) to the reported line
  i   ignore this check from now on (persisted to the config)
  s   skip this diagnostic
  S   skip every diagnostic in this file
  d   show documentation for this check
  q   quit
`)
}

// Summary prints what the run changed. delta is the net byte growth across
// all edited files, as reported by the Replacer.
func (c *Controller) Summary(delta int) {
	s := c.Session
	fmt.Fprintf(c.Out, "\napplied %d fixes, inserted %d markers, muted %d checks\n",
		s.Applied, s.Marked, s.Muted)
	switch {
	case delta > 0:
		fmt.Fprintf(c.Out, "net change: +%s\n", humanize.Bytes(uint64(delta)))
	case delta < 0:
		fmt.Fprintf(c.Out, "net change: -%s\n", humanize.Bytes(uint64(-delta)))
	}
}
