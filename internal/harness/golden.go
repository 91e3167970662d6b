package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where scenario golden files live.
const GoldenDir = "testdata/golden"

// RunWithGolden compiles a scenario and compares the output against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot be compiled.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	h, err := New(scenario)
	if err != nil {
		return err
	}
	out, err := h.Compile()
	if err != nil {
		return err
	}
	AssertGolden(t, GoldenDir, scenario.Name, out)
	return nil
}

// AssertGolden compares output against {dir}/{name}.golden.
func AssertGolden(t *testing.T, dir, name string, output []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, output)
}

// UpdateGolden writes output as the golden file of name in dir.
func UpdateGolden(t *testing.T, dir, name string, output []byte) error {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(".golden"),
	)
	return g.Update(t, name, output)
}
