package report

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewSpanOver(t *testing.T) {
	start := &TextSpan{StartLine: 1, StartCol: 4, EndLine: 1, EndCol: 6}
	end := &TextSpan{StartLine: 3, StartCol: 0, EndLine: 3, EndCol: 9}

	span := NewSpanOver(start, end)
	if span.StartLine != 1 || span.StartCol != 4 || span.EndLine != 3 || span.EndCol != 9 {
		t.Fatalf("span over is %s", span)
	}

	if NewSpanOver(nil, end) != end || NewSpanOver(start, nil) != start {
		t.Fatalf("missing spans were not skipped")
	}

	if span.String() != "2:5-4:10" {
		t.Fatalf("span is displayed as %s", span)
	}
}

func throw(v interface{}) (err error) {
	defer CatchErrors(&err)
	panic(v)
}

func TestCatchErrors(t *testing.T) {
	err := throw(Raise(NameNotFound, &TextSpan{StartLine: 2, StartCol: 3}, "undefined name: `%s`", "x"))
	if !IsKind(err, NameNotFound) || IsInternal(err) {
		t.Fatalf("compile error was not caught as is: %v", err)
	}

	if err.Error() != "3:4: undefined name: `x`" {
		t.Fatalf("compile error message is %q", err.Error())
	}

	if err := throw(ICE("broken")); !IsInternal(err) {
		t.Fatalf("internal error was not caught as is: %v", err)
	}

	if err := throw(errors.New("runtime")); !IsInternal(err) || err.Error() != "internal compiler error: runtime" {
		t.Fatalf("plain error was not converted: %v", err)
	}

	if err := throw(42); !IsInternal(err) {
		t.Fatalf("panic value was not converted: %v", err)
	}

	wrapped := fmt.Errorf("during walk: %w", Raise(ClosureViolation, nil, "no"))
	if !IsKind(wrapped, ClosureViolation) || IsKind(wrapped, NameNotFound) {
		t.Fatalf("wrapped compile error kind was not found")
	}
}

func TestErrorKindNames(t *testing.T) {
	if TypeMismatch.String() != "Type Mismatch" || ErrorKind(99).String() != "ErrorKind(99)" {
		t.Fatalf("unexpected error kind names")
	}
}

func TestLogLevelFromName(t *testing.T) {
	tests := []struct {
		name  string
		level int
	}{
		{"silent", LogLevelSilent},
		{"error", LogLevelError},
		{"warn", LogLevelWarn},
		{"verbose", LogLevelVerbose},
		{"loud", LogLevelVerbose},
	}

	for _, test := range tests {
		if level := LogLevelFromName(test.name); level != test.level {
			t.Fatalf("log level `%s` is %d, want %d", test.name, level, test.level)
		}
	}
}

func TestCaretSelection(t *testing.T) {
	text := "let a = 1\n  let b = foo(a,\n\tbar)\nc"
	span := &TextSpan{StartLine: 1, StartCol: 10, EndLine: 2, EndCol: 6}

	lines := SelectLines(text, span)
	if len(lines) != 2 || lines[1] != "    bar)" {
		t.Fatalf("selected lines are %q", lines)
	}

	// the first line is underlined from the start column to its end
	if prefix, count := caretRange(lines[0], 0, 2, span, 2); prefix != 8 || count != 6 {
		t.Fatalf("first line carets are (%d, %d)", prefix, count)
	}

	// the last line is underlined up to and including the end column
	if prefix, count := caretRange(lines[1], 1, 2, span, 2); prefix != 0 || count != 5 {
		t.Fatalf("last line carets are (%d, %d)", prefix, count)
	}
}
