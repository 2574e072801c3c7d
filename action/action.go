package action

import (
	"fmt"
	"io"
)

// Action is one binary action record.  The declaration layer never looks
// inside an action: it only orders, caches and concatenates them.
type Action interface {
	// Size returns the number of bytes Write will produce.
	Size() int

	// Write writes the encoded action.
	Write(w io.Writer) error
}

// Raw is an action whose bytes have already been encoded.
type Raw []byte

func (r Raw) Size() int {
	return len(r)
}

func (r Raw) Write(w io.Writer) error {
	_, err := w.Write(r)
	return err
}

// TotalSize returns the combined size of a list of actions.
func TotalSize(actions []Action) int {
	size := 0
	for _, act := range actions {
		size += act.Size()
	}

	return size
}

// WriteAll writes a list of actions in order.  It fails if any action writes
// a different number of bytes than it reported.
func WriteAll(w io.Writer, actions []Action) error {
	for i, act := range actions {
		cw := &countingWriter{w: w}
		if err := act.Write(cw); err != nil {
			return fmt.Errorf("writing action %d: %w", i, err)
		}

		if cw.n != act.Size() {
			return fmt.Errorf("action %d wrote %d bytes but reported a size of %d", i, cw.n, act.Size())
		}
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += n
	return n, err
}
