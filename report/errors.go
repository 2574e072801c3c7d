package report

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile error.
type ErrorKind int

// Enumeration of compile error kinds.  Every kind is fatal to the compilation
// unit.
const (
	KindStructural          ErrorKind = iota // wrong parameter count or type for a declaration
	KindDuplicateDefinition                  // name collision in a registry or label table
	KindSelfInclusion                        // an entity references itself
	KindUnknownReference                     // name not found at resolution time
	KindReferenceKind                        // resolved value lacks the required capability
	KindCapacity                             // an engine limit (eg. action IDs) was exceeded
)

var kindNames = map[ErrorKind]string{
	KindStructural:          "Structure",
	KindDuplicateDefinition: "Definition",
	KindSelfInclusion:       "Inclusion",
	KindUnknownReference:    "Name",
	KindReferenceKind:       "Reference",
	KindCapacity:            "Capacity",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CompileError is an error in the input program.  It always carries the
// position it was raised at; duplicate definitions additionally carry the
// position of the original definition.
type CompileError struct {
	Kind     ErrorKind
	Message  string
	Position *TextPosition

	// Original is the position of the first definition for duplicate
	// definition errors.  It is nil for all other kinds.
	Original *TextPosition
}

func (ce *CompileError) Error() string {
	if ce.Position == nil {
		return ce.Message
	}

	return fmt.Sprintf("%s: %s", ce.Position, ce.Message)
}

// Raise creates a new compile error of the given kind.
func Raise(kind ErrorKind, pos *TextPosition, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(msg, args...), Position: pos}
}

// RaiseDuplicate creates a new duplicate definition error that remembers where
// the conflicting name was first defined.
func RaiseDuplicate(pos, original *TextPosition, msg string, args ...interface{}) *CompileError {
	cerr := Raise(KindDuplicateDefinition, pos, msg, args...)
	cerr.Original = original
	return cerr
}

// KindOf returns the kind of the compile error wrapped by err.  The boolean is
// false if err does not wrap a compile error.
func KindOf(err error) (ErrorKind, bool) {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}

	return 0, false
}
