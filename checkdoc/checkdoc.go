// Package checkdoc serves offline documentation for clang-tidy checks,
// shown when the operator presses 'd' during the walk.
package checkdoc

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed docs.txt
var raw string

var (
	once sync.Once
	docs map[string]string
)

// parse splits docs.txt into per-check blocks. A block starts with a line of
// the form "# <check-name>" and runs until the next such line.
func parse() {
	docs = make(map[string]string)
	var name string
	var body []string
	flush := func() {
		if name != "" {
			docs[name] = strings.TrimSpace(strings.Join(body, "\n")) + "\n"
		}
		body = body[:0]
	}
	for line := range strings.Lines(raw) {
		line = strings.TrimSuffix(line, "\n")
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			flush()
			name = strings.TrimSpace(rest)
			continue
		}
		body = append(body, line)
	}
	flush()
}

// Lookup returns the documentation for check. Unknown checks get a pointer to
// the upstream documentation page instead of an empty screen.
func Lookup(check string) string {
	once.Do(parse)
	if text, ok := docs[check]; ok {
		return fmt.Sprintf("%s\n%s\n%s", check, strings.Repeat("=", len(check)), text)
	}
	return fmt.Sprintf("No bundled documentation for %s.\n\nSee %s\n", check, URL(check))
}

// URL returns the upstream documentation address for check. Check names are
// "<group>-<rest>"; the site nests pages by group.
func URL(check string) string {
	group, rest, ok := strings.Cut(check, "-")
	if !ok {
		return "https://clang.llvm.org/extra/clang-tidy/checks/list.html"
	}
	return fmt.Sprintf("https://clang.llvm.org/extra/clang-tidy/checks/%s/%s.html", group, rest)
}
