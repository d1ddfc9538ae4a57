// Package termkey reads single keypresses from the controlling terminal.
package termkey

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// A Reader yields one key at a time from the terminal. The terminal is put
// into raw mode only for the duration of each read, so regular output between
// prompts behaves normally.
type Reader struct {
	f *os.File
}

// New returns a Reader over stdin, or an error when stdin is not a terminal.
func New() (*Reader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("termkey: stdin is not a terminal")
	}
	return &Reader{f: os.Stdin}, nil
}

// ReadKey blocks until the operator presses a key and returns it.
// Ctrl-C is reported as 'q': raw mode swallows the interrupt signal, and
// quitting is what the operator meant.
func (r *Reader) ReadKey() (byte, error) {
	fd := int(r.f.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer term.Restore(fd, old)

	var buf [1]byte
	if _, err := r.f.Read(buf[:]); err != nil {
		return 0, err
	}
	if buf[0] == 3 {
		return 'q', nil
	}
	return buf[0], nil
}
