// Package prover implements the proof service.
package prover

import (
	"time"

	"github.com/0xer-org/zk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxConcurrent bounds the number of in-flight proofs.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithProofTimeout bounds a single proof generation.
func WithProofTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.proofTimeout = d
		}
	}
}

// WithProofLatency sets the emulated proving latency range.
func WithProofLatency(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
