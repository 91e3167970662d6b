package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsc/internal/config"
	"github.com/roach88/jsc/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]int{"bytes": 42}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"bytes": float64(42)}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E102", "x is not defined", map[string]string{"file": "main.json"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
	assert.Equal(t, "x is not defined", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		absent  []string
	}{
		{"quiet", false, []string{"Error [E001]", "write failed"}, []string{"Details:"}},
		{"verbose", true, []string{"Error [E001]", "Details:"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}
			require.NoError(t, formatter.Error("E001", "write failed", map[string]string{"file": "out.cpp"}))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("Compiling %s", "main.json")
	assert.Empty(t, out.String())
	assert.Contains(t, diag.String(), "Compiling main.json")

	formatter.Verbose = false
	diag.Reset()
	formatter.VerboseLog("hidden")
	assert.Empty(t, diag.String())
}

func TestFailMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exit int
		code string
	}{
		{"syntax", ir.Errorf(ir.ErrSyntax, ir.Location{File: "a.json", Line: 2, Column: 1}, "unsupported"), ExitFailure, ErrCodeSyntax},
		{"wrapped reference", fmt.Errorf("add: %w", ir.Errorf(ir.ErrReference, ir.Location{}, "x is not defined")), ExitFailure, ErrCodeReference},
		{"codegen", ir.Errorf(ir.ErrCodegen, ir.Location{}, "no template"), ExitFailure, ErrCodeCodegen},
		{"contract", ir.Errorf(ir.ErrContract, ir.Location{}, "const"), ExitFailure, ErrCodeContract},
		{"config", &config.ConfigError{Field: "project.sources", Message: "incomplete"}, ExitCommandError, ErrCodeConfig},
		{"coded", withCode(ErrCodeCache, errors.New("locked")), ExitCommandError, ErrCodeCache},
		{"plain", errors.New("boom"), ExitCommandError, ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.err)
			assert.Equal(t, tt.exit, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestDiagnosticDetails(t *testing.T) {
	_, message, details := describeError(ir.Errorf(ir.ErrSyntax, ir.Location{File: "a.json", Line: 2, Column: 5}, "bad"))
	assert.Equal(t, "a.json:2:5: syntax: bad", message)
	assert.Equal(t, map[string]any{"kind": "syntax", "file": "a.json", "line": 2, "column": 5}, details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "x", nil))))
}
