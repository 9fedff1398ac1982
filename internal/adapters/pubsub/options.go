// Package pubsub wraps the Cloud Pub/Sub client for the prover pipeline.
package pubsub

import (
	"github.com/0xer-org/zk/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithProjectID sets the GCP project identifier.
func WithProjectID(projectID string) Option {
	return func(c *Client) {
		if projectID != "" {
			c.projectID = projectID
		}
	}
}

// WithEmulatorHost points the client at a local Pub/Sub emulator.
func WithEmulatorHost(host string) Option {
	return func(c *Client) {
		c.emulatorHost = host
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}
