package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/jsc/internal/compiler"
)

// Harness compiles one scenario in isolation.
type Harness struct {
	scenario *Scenario
	files    map[string][]byte
	logger   *slog.Logger
}

// New prepares a harness for scenario. Logs are discarded.
func New(scenario *Scenario) (*Harness, error) {
	h := &Harness{
		scenario: scenario,
		files:    make(map[string][]byte, len(scenario.Inputs)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, in := range scenario.Inputs {
		data, err := in.content()
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Name, err)
		}
		h.files[in.Name] = data
	}
	return h, nil
}

func (in Input) content() ([]byte, error) {
	if in.ESTree != nil {
		return json.Marshal(in.ESTree)
	}
	return []byte(in.Text), nil
}

func (h *Harness) read(path string) ([]byte, error) {
	data, ok := h.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return data, nil
}

// Compile runs the driver over the scenario's inputs and returns the
// writer's output.
func (h *Harness) Compile() ([]byte, error) {
	opts := compiler.NewOptions()
	for key, values := range h.scenario.Options {
		opts.Push(key, values...)
	}
	c := compiler.New(opts, h.read, h.logger)
	for _, in := range h.scenario.Inputs {
		if in.IncludeOnly {
			continue
		}
		if err := c.Add(in.Name, h.files[in.Name]); err != nil {
			return nil, err
		}
	}
	format := h.scenario.Format
	if format == "" {
		format = "cpp"
	}
	return c.Write(format)
}

// Run executes a scenario and evaluates its assertions.
//
// A compilation failure is not an error of Run: it is recorded on the
// result, where `error` assertions inspect it. Run only fails when the
// scenario itself cannot be prepared.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	out, err := h.Compile()
	if err != nil {
		result.CompileError = err
	} else {
		result.Output = string(out)
	}

	expectsError := false
	for _, a := range scenario.Assertions {
		if a.Type == AssertError {
			expectsError = true
		}
		if err := evaluate(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	if result.CompileError != nil && !expectsError {
		result.AddError(fmt.Sprintf("compilation failed: %v", result.CompileError))
	}
	return result, nil
}
