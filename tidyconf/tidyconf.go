// Package tidyconf reads and rewrites the .clang-tidy configuration,
// maintaining the set of checks disabled on its Checks: line.
//
// Only the Checks: line is interpreted; every other line passes through a
// load/save cycle with its text unchanged. Lines are written back ending in a
// single "\n", so CRLF endings and a missing final newline are not preserved.
package tidyconf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// A Store holds the raw config lines plus the ordered set of ignored checks.
type Store struct {
	lines   []string
	ignored []string // insertion order, preserved on save
	index   map[string]bool
}

// NewStore returns an empty Store with no config lines.
func NewStore() *Store {
	return &Store{index: make(map[string]bool)}
}

// Load reads the config at path. A missing file yields an empty store: the
// tool works without a .clang-tidy and creates one on the first ignore.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads config lines from r. On the Checks: line, the payload between
// the first and last single quote is split on commas; every token starting
// with '-' enters the ignore set without its minus.
func Parse(r io.Reader) (*Store, error) {
	s := NewStore()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		s.lines = append(s.lines, line)
		if !strings.HasPrefix(line, "Checks:") {
			continue
		}
		first := strings.IndexByte(line, '\'')
		last := strings.LastIndexByte(line, '\'')
		if first < 0 || last <= first {
			continue
		}
		for tok := range strings.SplitSeq(line[first+1:last], ",") {
			tok = strings.TrimLeft(tok, " \t")
			if name, ok := strings.CutPrefix(tok, "-"); ok {
				s.Ignore(name)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Ignore adds check to the ignore set. Re-adding is a no-op and keeps the
// original position.
func (s *Store) Ignore(check string) {
	if s.index[check] {
		return
	}
	s.index[check] = true
	s.ignored = append(s.ignored, check)
}

// Ignored reports whether check is in the ignore set.
func (s *Store) Ignored(check string) bool {
	return s.index[check]
}

// IgnoredChecks returns the ignore set in insertion order.
func (s *Store) IgnoredChecks() []string {
	return slices.Clone(s.ignored)
}

// checksLine renders the normalized Checks: line for the current ignore set.
func (s *Store) checksLine() string {
	if len(s.ignored) == 0 {
		return "Checks: '*'"
	}
	return fmt.Sprintf("Checks: '*, -%s'", strings.Join(s.ignored, ", -"))
}

// Write emits the config: every line verbatim and in order, except the
// Checks: line, which is rewritten in normalized form. A store loaded from
// nothing emits just the Checks: line.
func (s *Store) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	sawChecks := false
	for _, line := range s.lines {
		if strings.HasPrefix(line, "Checks:") {
			line = s.checksLine()
			sawChecks = true
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	if !sawChecks {
		if _, err := fmt.Fprintln(bw, s.checksLine()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes the config to path.
func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
