package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional .env file, an
// optional YAML file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file in the working directory, if present
//  3. file (YAML) if ZK_CONFIG is set
//  4. env (prefix ZK_)
func Load(ctx context.Context) (*Config, error) {
	// Populate os.Environ from a .env file if one exists; real env
	// vars are not overwritten.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ZK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ZK_GCP_PROJECT_ID, ZK_PROVER_TOPIC, ...
	// Map env keys like ZK_PROVER_TOPIC -> prover_topic (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ZK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "zk_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// The stock emulator variable wins over nothing being configured;
	// it is the mechanism the client library itself honors.
	if cfg.EmulatorHost == "" {
		cfg.EmulatorHost = os.Getenv("PUBSUB_EMULATOR_HOST")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
