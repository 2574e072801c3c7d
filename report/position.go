package report

import "fmt"

// TextPosition represents a positional range in a source file.  Lines are
// 1-indexed; columns are 0-indexed with the end column one past the last
// character.  Positions are only ever used for diagnostics.
type TextPosition struct {
	File              string
	StartLn, StartCol int
	EndLn, EndCol     int
}

// NewPosition returns a single-line position starting at the given line and
// column and spanning length characters.
func NewPosition(file string, line, col, length int) *TextPosition {
	return &TextPosition{
		File:     file,
		StartLn:  line,
		StartCol: col,
		EndLn:    line,
		EndCol:   col + length,
	}
}

// TextPositionFromRange takes two positions and computes the text position
// spanning them.
func TextPositionFromRange(start, end *TextPosition) *TextPosition {
	return &TextPosition{
		File:     start.File,
		StartLn:  start.StartLn,
		StartCol: start.StartCol,
		EndLn:    end.EndLn,
		EndCol:   end.EndCol,
	}
}

func (tp *TextPosition) String() string {
	if tp == nil {
		return "<unknown position>"
	}

	return fmt.Sprintf("%s:%d:%d", tp.File, tp.StartLn, tp.StartCol+1)
}
