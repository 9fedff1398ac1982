// Package fixture builds prover request payloads for the test scenarios
// the harness publishes against the emulator.
package fixture

import (
	"fmt"
)

// Scenario is a closed set of test-fixture variants, each exercising a
// specific consumer code path.
type Scenario int

const (
	// Normal is a well-formed request with a 0.75 recaptcha score and
	// both verification flags set.
	Normal Scenario = iota

	// Boundary pushes every input to its maximum valid value so the
	// computed index saturates at 255.
	Boundary

	// InvalidJSON produces a syntactically broken payload to exercise
	// the consumer's parse-error path.
	InvalidJSON

	// MissingFields produces a parseable payload that omits the
	// bio_verified field to exercise schema validation.
	MissingFields
)

// scenarioNames maps scenarios to the names used on the CLI and in
// request IDs. The underscore forms match the original message tooling.
var scenarioNames = map[Scenario]string{
	Normal:        "normal",
	Boundary:      "boundary",
	InvalidJSON:   "invalid_json",
	MissingFields: "missing_fields",
}

func (s Scenario) String() string {
	if name, ok := scenarioNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scenario(%d)", int(s))
}

// ParseScenario resolves a scenario name as supplied on the command
// line. Unrecognized names fail with ErrUnknownScenario.
func ParseScenario(name string) (Scenario, error) {
	for sc, n := range scenarioNames {
		if n == name {
			return sc, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Scenarios lists every known scenario in a stable order.
func Scenarios() []Scenario {
	return []Scenario{Normal, Boundary, InvalidJSON, MissingFields}
}
