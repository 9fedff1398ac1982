// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration shared by the harness CLI and
// the prover service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// JSONLogging switches the log handler to JSON output.
	JSONLogging bool `koanf:"json_logging"`

	// ProjectID identifies the GCP project (any value works against
	// the emulator).
	ProjectID string `koanf:"gcp_project_id"`

	// EmulatorHost points the Pub/Sub client at a local emulator,
	// e.g. "localhost:8085". Empty means use the real service.
	EmulatorHost string `koanf:"pubsub_emulator_host"`

	// Request channel: the topic the harness publishes to and the
	// subscription the prover consumes.
	ProverTopic        string `koanf:"prover_topic"`
	ProverSubscription string `koanf:"prover_subscription"`

	// Result channel: the topic the prover publishes to and the
	// subscription the harness listens on.
	ResultTopic        string `koanf:"result_topic"`
	ResultSubscription string `koanf:"result_subscription"`

	// ListenTimeout bounds the harness listen loop. Zero means listen
	// until interrupted.
	ListenTimeout time.Duration `koanf:"listen_timeout"`

	// MaxConcurrentProofs bounds in-flight proof generations.
	MaxConcurrentProofs int `koanf:"max_concurrent_proofs"`

	// ProofTimeout bounds a single proof generation.
	ProofTimeout time.Duration `koanf:"proof_timeout"`

	// ProofLatencyMinMS and ProofLatencyMaxMS bound the emulated proof
	// generation latency.
	ProofLatencyMinMS int `koanf:"proof_latency_min_ms"`
	ProofLatencyMaxMS int `koanf:"proof_latency_max_ms"`

	// MetricsAddr configures the prover's metrics HTTP listen address.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults. The channel names match the
// emulator tooling shipped with the prover.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		JSONLogging:         false,
		ProjectID:           "test-project",
		EmulatorHost:        "",
		ProverTopic:         "prover-requests",
		ProverSubscription:  "prover-requests-sub",
		ResultTopic:         "prover-results",
		ResultSubscription:  "prover-results-sub",
		ListenTimeout:       30 * time.Second,
		MaxConcurrentProofs: 2,
		ProofTimeout:        time.Hour,
		ProofLatencyMinMS:   80,
		ProofLatencyMaxMS:   150,
		MetricsAddr:         ":9090",
	}
}

// Validate checks invariants that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: gcp_project_id must not be empty", ErrInvalidConfig)
	}
	if c.MaxConcurrentProofs <= 0 {
		return fmt.Errorf("%w: max_concurrent_proofs must be greater than 0", ErrInvalidConfig)
	}
	if c.ProofTimeout <= 0 {
		return fmt.Errorf("%w: proof_timeout must be greater than 0", ErrInvalidConfig)
	}
	if c.ProofLatencyMinMS < 0 || c.ProofLatencyMaxMS < c.ProofLatencyMinMS {
		return fmt.Errorf("%w: proof latency bounds are inverted", ErrInvalidConfig)
	}
	return nil
}
