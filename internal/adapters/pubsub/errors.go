package pubsub

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrClientInit = errors.New("pubsub client init failed")
	ErrPublish    = errors.New("publish failed")
	ErrReceive    = errors.New("receive failed")
)
