package fixture

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrNoTypedForm     = errors.New("scenario has no well-formed request")
)
