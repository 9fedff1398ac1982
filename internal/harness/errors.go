package harness

import "errors"

// ErrVerification indicates a prover result did not match what was
// published for it.
var ErrVerification = errors.New("result verification failed")
