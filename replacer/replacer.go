// Package replacer coordinates byte-range edits across many source files.
//
// The first edit that touches a file snapshots it to a sibling with the
// ".orig" suffix, so that later line-relative edits can be positioned against
// the pristine bytes and an interrupted run can be undone by hand
// (mv file.orig file). Working files are flushed to disk after every edit;
// backups are removed on Close.
package replacer

import (
	"fmt"
	"os"

	"github.com/sasq64/autotidy/patchfile"
	"github.com/sasq64/autotidy/textpos"
)

// BackupSuffix is appended to a file's path to name its pre-edit snapshot.
const BackupSuffix = ".orig"

// An Edit is one byte-range replacement in a source file, in coordinates of
// the file as it was when the diagnostic was produced. Length 0 inserts;
// empty Text deletes.
type Edit struct {
	Path   string
	Offset int
	Length int
	Text   string
}

// A Replacer owns the working copies of every file edited during a run.
// It is not safe for concurrent use; autotidy is single-threaded.
type Replacer struct {
	tracked map[string]*patchfile.File
}

// New returns an empty Replacer.
func New() *Replacer {
	return &Replacer{tracked: make(map[string]*patchfile.File)}
}

// Tracked reports whether path has been edited during this run.
func (r *Replacer) Tracked(path string) bool {
	_, ok := r.tracked[path]
	return ok
}

// Apply applies one edit. On the first edit to a path the on-disk file is
// copied to path+".orig" before anything is modified. The working file is
// flushed to disk afterwards.
func (r *Replacer) Apply(e Edit) error {
	pf, ok := r.tracked[e.Path]
	if !ok {
		if err := copyFile(e.Path+BackupSuffix, e.Path); err != nil {
			return fmt.Errorf("backing up %s: %w", e.Path, err)
		}
		pf = patchfile.New(e.Path)
		r.tracked[e.Path] = pf
	}
	if err := pf.Patch(e.Offset, e.Length, []byte(e.Text)); err != nil {
		return err
	}
	return pf.Flush()
}

// AppendToLine inserts text at the end of the given 1-based line. The offset
// is computed against the backup when the file is tracked, otherwise against
// the live file: a NOLINT or TODO marker belongs on the line the linter
// reported, not on a line shifted by earlier fixes.
func (r *Replacer) AppendToLine(path string, line int, text string) error {
	src := path
	if r.Tracked(path) {
		src = path + BackupSuffix
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	off, err := textpos.LineColToOffset(b, line+1, 1)
	if err != nil {
		return fmt.Errorf("%s has no line %d: %w", path, line, err)
	}
	return r.Apply(Edit{Path: path, Offset: off - 1, Length: 0, Text: text})
}

// CopyFile copies the working bytes of source to target. When source is
// tracked, its edit ledger is cloned under target and its backup is copied
// to target+".orig", so target keeps translating offsets exactly like
// source and the tracked-implies-backup invariant holds.
func (r *Replacer) CopyFile(target, source string) error {
	if pf, ok := r.tracked[source]; ok {
		clone := pf.Clone()
		clone.Rename(target)
		r.tracked[target] = clone
		if err := copyFile(target+BackupSuffix, source+BackupSuffix); err != nil {
			return fmt.Errorf("copying backup of %s: %w", source, err)
		}
	}
	return copyFile(target, source)
}

// RemoveFile deletes the working file and, when tracked, its backup and the
// tracked entry.
func (r *Replacer) RemoveFile(path string) error {
	if r.Tracked(path) {
		delete(r.tracked, path)
		if err := os.Remove(path + BackupSuffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SizeChange returns the net byte growth across every tracked file.
func (r *Replacer) SizeChange() int {
	total := 0
	for _, pf := range r.tracked {
		total += pf.SizeChange()
	}
	return total
}

// Close deletes every ".orig" backup and forgets all tracked files. The
// edited working files stay in place. The first removal error is returned;
// remaining backups are still attempted.
func (r *Replacer) Close() error {
	var firstErr error
	for path := range r.tracked {
		err := os.Remove(path + BackupSuffix)
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	clear(r.tracked)
	return firstErr
}

func copyFile(dst, src string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	st, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, st.Mode().Perm())
}
