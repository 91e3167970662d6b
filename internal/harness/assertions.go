package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/jsc/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

func evaluate(r *Result, a Assertion) error {
	if a.Type == AssertError {
		return assertError(r, a)
	}
	if r.CompileError != nil {
		// reported once by Run
		return nil
	}
	switch a.Type {
	case AssertContains:
		if !strings.Contains(r.Output, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("output containing %q", a.Text), Actual: "not found"}
		}
	case AssertExcludes:
		if strings.Contains(r.Output, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("no %q in output", a.Text), Actual: "found"}
		}
	case AssertMatches:
		if !regexp.MustCompile(a.Pattern).MatchString(r.Output) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("output matching /%s/", a.Pattern), Actual: "no match"}
		}
	case AssertOrder:
		return assertOrder(r.Output, a)
	case AssertCount:
		if n := strings.Count(r.Output, a.Text); n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d occurrence(s) of %q", a.Count, a.Text),
				Actual:   fmt.Sprintf("%d occurrence(s)", n),
			}
		}
	}
	return nil
}

// assertOrder checks that lines occur in order. They need not be
// consecutive.
func assertOrder(output string, a Assertion) error {
	pos := 0
	for i, line := range a.Lines {
		idx := strings.Index(output[pos:], line)
		if idx < 0 {
			actual := "not found"
			if i > 0 && strings.Contains(output, line) {
				actual = fmt.Sprintf("found only before %q", a.Lines[i-1])
			}
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q after position %d", line, pos), Actual: actual}
		}
		pos += idx + len(line)
	}
	return nil
}

func assertError(r *Result, a Assertion) error {
	if r.CompileError == nil {
		return &AssertionError{Type: a.Type, Expected: "compilation to fail", Actual: "it succeeded"}
	}
	if a.Kind != "" && !ir.IsKind(r.CompileError, ir.ErrorKind(a.Kind)) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("a %s error", a.Kind), Actual: r.CompileError.Error()}
	}
	if a.Text != "" && !strings.Contains(r.CompileError.Error(), a.Text) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("error containing %q", a.Text), Actual: r.CompileError.Error()}
	}
	return nil
}
