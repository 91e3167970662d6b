// Package harness runs compile scenarios: YAML files that describe a set of
// inputs (inline ESTree programs, resource text), the driver options and
// assertions over the generated output.
//
// # Scenario Format
//
//	name: while_loop
//	description: "A while loop tests once and jumps back"
//	options:
//	  platform: [std]
//	inputs:
//	  - name: main.json
//	    estree: {type: Program, body: [...]}
//	  - name: tiles.hex
//	    text: "0aff"
//	    include_only: true
//	assertions:
//	  - type: output_contains
//	    text: "goto enterCondition_"
//	  - type: output_count
//	    text: "if (!js::to<bool>("
//	    count: 1
//
// Inputs are added in order; include_only inputs are reachable only through
// `include` directives.
//
// # Assertion Types
//
//   - output_contains: the output contains text
//   - output_excludes: the output does not contain text
//   - output_matches: the output matches the regular expression pattern
//   - output_order: every entry of lines occurs, in order
//   - output_count: text occurs exactly count times
//   - error: compilation fails, optionally with kind and text
//
// # Deterministic Testing
//
// A compilation has no clock and no randomness, so compiling the same
// scenario twice yields byte-identical output. Golden files under
// testdata/golden pin that output with goldie.
package harness
