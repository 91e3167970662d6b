package harness

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "testdata/scenarios"

func TestScenarios(t *testing.T) {
	paths, err := DiscoverScenarios(scenarioDir)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRunDir(t *testing.T) {
	results, err := RunDir(scenarioDir)
	require.NoError(t, err)
	require.Contains(t, results, "while_loop")
	assert.NotEmpty(t, results["while_loop"].Output)
	assert.NotNil(t, results["undefined_name"].CompileError)
}

func minimal() *Scenario {
	return &Scenario{
		Name:        "minimal",
		Description: "one declaration",
		Inputs: []Input{{
			Name: "main.json",
			ESTree: map[string]any{
				"type": "Program",
				"body": []any{map[string]any{
					"type": "VariableDeclaration",
					"kind": "let",
					"declarations": []any{map[string]any{
						"type": "VariableDeclarator",
						"id":   map[string]any{"type": "Identifier", "name": "x"},
						"init": map[string]any{"type": "Literal", "value": 1},
					}},
				}},
			},
		}},
		Assertions: []Assertion{{Type: AssertContains, Text: "int32_t(1)"}},
	}
}

func TestFailedAssertionsAreReported(t *testing.T) {
	s := minimal()
	s.Assertions = []Assertion{
		{Type: AssertContains, Text: "nowhere"},
		{Type: AssertExcludes, Text: "int32_t(1)"},
		{Type: AssertCount, Text: "int32_t(1)", Count: 7},
		{Type: AssertOrder, Lines: []string{"int main()", "STRDECL"}},
		{Type: AssertError},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "output containing \"nowhere\"")
	assert.Contains(t, result.Errors[2], "7 occurrence(s)")
	assert.Contains(t, result.Errors[3], "found only before")
	assert.Contains(t, result.Errors[4], "compilation to fail")
}

func TestUnexpectedCompileErrorFails(t *testing.T) {
	s := minimal()
	s.Inputs[0].ESTree = map[string]any{"type": "Program", "body": []any{
		map[string]any{"type": "ExpressionStatement", "expression": map[string]any{
			"type": "CallExpression", "callee": map[string]any{"type": "Identifier", "name": "nope"}, "arguments": []any{},
		}},
	}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "nope is not defined")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: a\ndescription: b\nflow: []\n", "field flow not found"},
		{"no name", "description: b\n", "name is required"},
		{"no inputs", "name: a\ndescription: b\nassertions: [{type: error}]\n", "inputs list is required"},
		{"bad format", "name: a\ndescription: b\nformat: js\n", "format \"js\""},
		{"both contents", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00', estree: {type: Program}}]\nassertions: [{type: error}]\n", "exactly one of estree and text"},
		{"duplicate input", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00'}, {name: x.hex, text: '01'}]\nassertions: [{type: error}]\n", "duplicate name"},
		{"unknown assertion", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00'}]\nassertions: [{type: trace_order}]\n", "unknown type"},
		{"bad kind", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00'}]\nassertions: [{type: error, kind: fatal}]\n", "unknown error kind"},
		{"short order", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00'}]\nassertions: [{type: output_order, lines: [a]}]\n", "at least 2 lines"},
		{"bad pattern", "name: a\ndescription: b\ninputs: [{name: x.hex, text: '00'}]\nassertions: [{type: output_matches, pattern: '('}]\n", "valid pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestDiscoverScenariosRejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.yaml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err := DiscoverScenarios(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestOutputIsDeterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenarioDir, "includes_and_resources.yaml"))
	require.NoError(t, err)

	compile := func() []byte {
		h, err := New(s)
		require.NoError(t, err)
		out, err := h.Compile()
		require.NoError(t, err)
		return out
	}

	dir := t.TempDir()
	require.NoError(t, UpdateGolden(t, dir, s.Name, compile()))
	AssertGolden(t, dir, s.Name, compile())
}

// TestGoldenScenarios pins scenario output against testdata/golden. Record
// a new scenario with -update.
func TestGoldenScenarios(t *testing.T) {
	paths, err := DiscoverScenarios(scenarioDir)
	require.NoError(t, err)

	update := false
	if f := flag.Lookup("update"); f != nil {
		update = f.Value.String() == "true"
	}
	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err)
		t.Run(s.Name, func(t *testing.T) {
			for _, a := range s.Assertions {
				if a.Type == AssertError {
					t.Skip("scenario expects a compile error")
				}
			}
			golden := filepath.Join(GoldenDir, s.Name+".golden")
			if _, err := os.Stat(golden); os.IsNotExist(err) && !update {
				t.Skipf("%s not recorded; run with -update", golden)
			}
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}
