package harness

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsc/internal/compiler"
	"github.com/roach88/jsc/internal/ir"
)

// Scenario defines one compile scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Format selects the writer, "cpp" when empty.
	Format string `yaml:"format,omitempty"`

	// Options seeds the driver's option bag. Every key holds a list.
	Options map[string][]string `yaml:"options,omitempty"`

	// Inputs are the files of the compilation.
	Inputs []Input `yaml:"inputs"`

	// Assertions validate the output or the failure.
	Assertions []Assertion `yaml:"assertions"`
}

// Input is one file. Exactly one of ESTree and Text is set.
type Input struct {
	Name string `yaml:"name"`

	// ESTree is an inline program, re-encoded as JSON before parsing.
	ESTree map[string]any `yaml:"estree,omitempty"`

	// Text is raw file content.
	Text string `yaml:"text,omitempty"`

	// IncludeOnly inputs are only read through include directives.
	IncludeOnly bool `yaml:"include_only,omitempty"`
}

// Assertion validates the result of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the substring to look for (output_*, and error messages).
	Text string `yaml:"text,omitempty"`

	// Pattern is a regular expression (output_matches).
	Pattern string `yaml:"pattern,omitempty"`

	// Lines are substrings that must occur in order (output_order).
	Lines []string `yaml:"lines,omitempty"`

	// Count is the expected number of occurrences (output_count).
	Count int `yaml:"count,omitempty"`

	// Kind is the expected diagnostic kind (error).
	Kind string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertContains = "output_contains"
	AssertExcludes = "output_excludes"
	AssertMatches  = "output_matches"
	AssertOrder    = "output_order"
	AssertCount    = "output_count"
	AssertError    = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Format != "" && !slices.Contains(compiler.Formats(), s.Format) {
		return fmt.Errorf("format %q is not one of %v", s.Format, compiler.Formats())
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("inputs list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, in := range s.Inputs {
		if in.Name == "" {
			return fmt.Errorf("inputs[%d]: name is required", i)
		}
		if seen[in.Name] {
			return fmt.Errorf("inputs[%d]: duplicate name %q", i, in.Name)
		}
		seen[in.Name] = true
		if (in.ESTree == nil) == (in.Text == "") {
			return fmt.Errorf("inputs[%d]: exactly one of estree and text is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertExcludes:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: %s requires text", index, a.Type)
		}
	case AssertMatches:
		if _, err := regexp.Compile(a.Pattern); err != nil || a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: output_matches requires a valid pattern", index)
		}
	case AssertOrder:
		if len(a.Lines) < 2 {
			return fmt.Errorf("assertions[%d]: output_order requires at least 2 lines", index)
		}
	case AssertCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: output_count requires text", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertError:
		switch ir.ErrorKind(a.Kind) {
		case "", ir.ErrSyntax, ir.ErrReference, ir.ErrCodegen, ir.ErrContract:
		default:
			return fmt.Errorf("assertions[%d]: unknown error kind %q", index, a.Kind)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
