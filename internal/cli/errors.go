package cli

import (
	"errors"

	"github.com/roach88/jsc/internal/config"
	"github.com/roach88/jsc/internal/ir"
)

// Error code constants, shared by all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Input file unreadable
	ErrCodeNoInputs    = "E003" // Nothing to compile
	ErrCodeConfig      = "E004" // Project file invalid
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Writer failed
	ErrCodeWriteFailed = "E007" // Output file write error
	ErrCodeCache       = "E008" // Build cache error

	// Program diagnostics
	ErrCodeSyntax    = "E101"
	ErrCodeReference = "E102"
	ErrCodeCodegen   = "E103"
	ErrCodeContract  = "E104"
)

var kindCodes = map[ir.ErrorKind]string{
	ir.ErrSyntax:    ErrCodeSyntax,
	ir.ErrReference: ErrCodeReference,
	ir.ErrCodegen:   ErrCodeCodegen,
	ir.ErrContract:  ErrCodeContract,
}

// codedError attaches a CLI error code to a command failure.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error {
	return &codedError{code: code, err: err}
}

func isDiagnostic(err error) bool {
	var diag *ir.Error
	return errors.As(err, &diag)
}

// describeError maps err to a code, a message and optional details.
func describeError(err error) (string, string, any) {
	var diag *ir.Error
	if errors.As(err, &diag) {
		code, ok := kindCodes[diag.Kind]
		if !ok {
			code = ErrCodeGeneric
		}
		details := map[string]any{"kind": string(diag.Kind)}
		if diag.Loc.File != "" {
			details["file"] = diag.Loc.File
		}
		if diag.Loc.IsValid() {
			details["line"] = diag.Loc.Line
			details["column"] = diag.Loc.Column
		}
		return code, diag.Error(), details
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ErrCodeConfig, cfgErr.Error(), map[string]any{"field": cfgErr.Field}
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code, coded.err.Error(), nil
	}
	return ErrCodeGeneric, err.Error(), nil
}
