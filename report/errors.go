package report

import (
	"errors"
	"fmt"
)

// TextSpan represents a range or "span" of source text.  It is used to point
// at erroneous or otherwise significant source text in a program.  Text spans
// are inclusive on both sides: the starting position is the position of the
// first character in the span and the ending position is the position of the
// last character in the span.  The line and column numbers are zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	if start == nil {
		return end
	} else if end == nil {
		return start
	}

	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (span *TextSpan) String() string {
	if span == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%d:%d-%d:%d", span.StartLine+1, span.StartCol+1, span.EndLine+1, span.EndCol+1)
}

// -----------------------------------------------------------------------------

// ErrorKind classifies a compile error.  Tooling uses the kind to tell apart
// the different ways a program can be rejected.
type ErrorKind int

// Enumeration of the error kinds.
const (
	NameAlreadyDeclared ErrorKind = iota
	NameNotFound
	MemberAmbiguous
	TypeNotFound
	TypeAmbiguous
	GenericInferenceFailed
	ClosureViolation
	CyclicDeclaration
	ReservedNameUsed
	TypeMismatch
	InvalidOperation
)

var errorKindNames = [...]string{
	NameAlreadyDeclared:    "Name Already Declared",
	NameNotFound:           "Name Not Found",
	MemberAmbiguous:        "Member Ambiguous",
	TypeNotFound:           "Type Not Found",
	TypeAmbiguous:          "Type Ambiguous",
	GenericInferenceFailed: "Generic Inference",
	ClosureViolation:       "Closure Violation",
	CyclicDeclaration:      "Cyclic Declaration",
	ReservedNameUsed:       "Reserved Name",
	TypeMismatch:           "Type Mismatch",
	InvalidOperation:       "Invalid Operation",
}

func (ek ErrorKind) String() string {
	if int(ek) < len(errorKindNames) {
		return errorKindNames[ek]
	}

	return fmt.Sprintf("ErrorKind(%d)", int(ek))
}

// CompileError is an error caused by erroneous user code.  It carries the
// kind of the error, the message, and the span of the offending node.
type CompileError struct {
	Kind    ErrorKind
	Message string

	// The span over which the error occurs.  This may be nil if the error has
	// no meaningful position (eg. a cycle spanning several declarations).
	Span *TextSpan
}

func (ce *CompileError) Error() string {
	if ce.Span == nil {
		return ce.Message
	}

	return fmt.Sprintf("%d:%d: %s", ce.Span.StartLine+1, ce.Span.StartCol+1, ce.Message)
}

// Raise creates a new compile error.  It is usually thrown directly:
//
//	panic(report.Raise(report.NameNotFound, span, "undefined symbol: `%s`", name))
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(msg, args...), Span: span}
}

// InternalError is an error that results from a bug or unexpected condition
// inside the compiler itself.  It is never caused by the user's program.
type InternalError struct {
	Message string
}

func (ie *InternalError) Error() string {
	return "internal compiler error: " + ie.Message
}

// ICE creates a new internal compiler error.
func ICE(msg string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(msg, args...)}
}

// IsKind returns whether err is a compile error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind == kind
	}

	return false
}

// IsInternal returns whether err is an internal compiler error.
func IsInternal(err error) bool {
	var ierr *InternalError
	return errors.As(err, &ierr)
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation and stores them in the error pointed to by errPtr.  Compile and
// internal errors are stored as is; any other panic value is converted into an
// internal error since it means the compiler broke one of its own invariants.
// NB: This function must ALWAYS be deferred.
func CatchErrors(errPtr *error) {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *CompileError:
			*errPtr = v
		case *InternalError:
			*errPtr = v
		case error:
			*errPtr = ICE("%s", v)
		default:
			*errPtr = ICE("%v", v)
		}
	}
}
