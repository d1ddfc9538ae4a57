// Package patchfile maintains an in-memory working copy of one source file
// together with an append-only ledger of the edits applied to it.
//
// Edits are expressed in coordinates of the original file, the way the linter
// reported them. Each applied edit records its original-file anchor and its
// size delta; translating a later edit's offset sums the deltas of every
// entry anchored strictly before it. Anchors of non-overlapping edits are
// disjoint, so the translated position is the same no matter what order the
// edits arrive in.
package patchfile

import (
	"errors"
	"fmt"
	"os"
	"slices"
)

// ErrOutOfRange reports an edit that does not fit inside the file.
var ErrOutOfRange = errors.New("patchfile: edit out of range")

// A File is the working state of one patched source file. Create Files with
// New; the zero value has no path to load from.
type File struct {
	path     string
	contents []byte
	loaded   bool
	ledger   []entry
}

// An entry is one applied edit: the original-file offset it was anchored at
// and the number of bytes it grew (negative: shrank) the buffer by.
type entry struct {
	anchor int
	delta  int
}

// New returns a File for path. The contents are not read until first needed.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file's current on-disk path.
func (f *File) Path() string { return f.path }

// Rename points the File at a new path. Disk is not touched; the next Flush
// writes there.
func (f *File) Rename(path string) { f.path = path }

// Contents returns the working buffer, reading it from disk on first use.
// Callers must not modify the returned slice.
func (f *File) Contents() ([]byte, error) {
	if !f.loaded {
		b, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		f.contents = b
		f.loaded = true
	}
	return f.contents, nil
}

// Translate maps an offset in the original file to the corresponding offset
// in the working buffer.
func (f *File) Translate(offset int) int {
	at := offset
	for _, e := range f.ledger {
		if e.anchor < offset {
			at += e.delta
		}
	}
	return at
}

// Patch replaces length bytes at offset with text, where offset and length
// are original-file coordinates. On ErrOutOfRange neither the buffer nor the
// ledger is modified.
func (f *File) Patch(offset, length int, text []byte) error {
	cur, err := f.Contents()
	if err != nil {
		return err
	}
	if offset < 0 || length < 0 {
		return fmt.Errorf("%w: offset %d, length %d", ErrOutOfRange, offset, length)
	}
	at := f.Translate(offset)
	if at < 0 || at > len(cur) || at+length > len(cur) {
		return fmt.Errorf("%w: offset %d, length %d in %d-byte file %s",
			ErrOutOfRange, offset, length, len(cur), f.path)
	}
	f.contents = slices.Concat(cur[:at], text, cur[at+length:])
	f.ledger = append(f.ledger, entry{anchor: offset, delta: len(text) - length})
	return nil
}

// SizeChange returns the net number of bytes this file grew by across all
// applied edits.
func (f *File) SizeChange() int {
	total := 0
	for _, e := range f.ledger {
		total += e.delta
	}
	return total
}

// Flush writes the working buffer to the current path. A File whose contents
// were never materialized has nothing to write.
func (f *File) Flush() error {
	if !f.loaded {
		return nil
	}
	return os.WriteFile(f.path, f.contents, 0o644)
}

// Clone returns an independent copy of f: same path, own buffer, own ledger.
func (f *File) Clone() *File {
	return &File{
		path:     f.path,
		contents: slices.Clone(f.contents),
		loaded:   f.loaded,
		ledger:   slices.Clone(f.ledger),
	}
}
