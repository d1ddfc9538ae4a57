// Package textpos converts between 1-based (line, column) positions and
// absolute byte offsets over an immutable buffer snapshot.
//
// Columns are bytes, not runes or display cells: clang-tidy reports byte
// columns, and keeping byte semantics makes offset round-trips exact. A tab
// counts as one byte.
package textpos

import "errors"

// ErrNotFound reports a position that does not exist in the buffer.
var ErrNotFound = errors.New("textpos: position not in buffer")

// LineColToOffset returns the byte offset of the given 1-based line and
// column in b. The column may address any byte on the line, including the
// terminating newline; the buffer's line structure past the column is not
// validated.
func LineColToOffset(b []byte, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, ErrNotFound
	}
	if line == 1 {
		return col - 1, nil
	}
	seen := 1
	for i, c := range b {
		if c != '\n' {
			continue
		}
		seen++
		if seen == line {
			return i + 1 + (col - 1), nil
		}
	}
	return 0, ErrNotFound
}

// OffsetToLineCol returns the 1-based line and column of the byte at offset.
// offset == len(b) is valid and addresses the position just past the last
// byte.
func OffsetToLineCol(b []byte, offset int) (line, col int, err error) {
	if offset < 0 || offset > len(b) {
		return 0, 0, ErrNotFound
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if b[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1, nil
}
