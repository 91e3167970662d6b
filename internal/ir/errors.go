package ir

import (
	"errors"
	"fmt"
)

// Location is a source position used for diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the location names a line.
func (l Location) IsValid() bool {
	return l.Line > 0
}

func (l Location) String() string {
	switch {
	case l.IsValid():
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.File != "":
		return l.File
	}
	return "<unknown>"
}

// ErrorKind classifies a diagnostic.
type ErrorKind string

const (
	// ErrSyntax covers constructs the lowering cannot express.
	ErrSyntax ErrorKind = "syntax"
	// ErrReference is a name missing from the whole scope chain.
	ErrReference ErrorKind = "reference"
	// ErrCodegen is an internal generator failure.
	ErrCodegen ErrorKind = "codegen"
	// ErrContract is a violated IR invariant.
	ErrContract ErrorKind = "contract"
)

// Error is a fatal, located diagnostic.
type Error struct {
	Kind    ErrorKind
	Message string
	Loc     Location
}

func (e *Error) Error() string {
	if e.Loc.IsValid() || e.Loc.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds a located diagnostic.
func Errorf(kind ErrorKind, loc Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Loc: loc}
}

// IsKind reports whether err wraps a diagnostic of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
