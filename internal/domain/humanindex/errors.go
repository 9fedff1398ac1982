package humanindex

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidPayload = errors.New("invalid request payload")
	ErrMissingField   = errors.New("missing required field")
)
