// Command harness drives the prover pipeline: provisioning Pub/Sub
// channels, publishing test scenarios, listening for results, and
// running a full end-to-end check.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xer-org/zk/internal/adapters/pubsub"
	"github.com/0xer-org/zk/internal/config"
	"github.com/0xer-org/zk/internal/fixture"
	"github.com/0xer-org/zk/internal/harness"
	"github.com/0xer-org/zk/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "harness",
		Short: "Test harness for the prover pipeline",
		Long: `Drives the prover pipeline against a Pub/Sub emulator or the real
service: provisions topics and subscriptions, publishes verification
request scenarios, and listens for prover results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSetupCommand(),
		newPublishCommand(),
		newListenCommand(),
		newE2ECommand(),
	)
	return root
}

// initRunner loads configuration, initializes logging, and builds a
// runner backed by a Pub/Sub client. The caller must close the client.
func initRunner(ctx context.Context) (*harness.Runner, *pubsub.Client, *config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := initLogging(cfg); err != nil {
		return nil, nil, nil, err
	}

	client, err := pubsub.New(ctx,
		pubsub.WithProjectID(cfg.ProjectID),
		pubsub.WithEmulatorHost(cfg.EmulatorHost),
		pubsub.WithLogger(logger.Get()),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return harness.NewRunner(client, cfg), client, cfg, nil
}

func initLogging(cfg *config.Config) error {
	initFn := logger.Init
	if cfg.JSONLogging {
		initFn = logger.InitJSON
	}
	if err := initFn(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	return nil
}

func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create topics and subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runner, client, _, err := initRunner(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			return runner.Setup(ctx)
		},
	}
}

func newPublishCommand() *cobra.Command {
	var (
		scenarioName string
		requestID    string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a verification request scenario",
		Long: `Publish a verification request on the prover topic. Scenarios:
normal, boundary, invalid_json, missing_fields.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sc, err := fixture.ParseScenario(scenarioName)
			if err != nil {
				return err
			}

			runner, client, _, err := initRunner(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := runner.Setup(ctx); err != nil {
				return err
			}
			_, err = runner.PublishScenario(ctx, sc, requestID)
			return err
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", fixture.Normal.String(), "scenario to publish")
	cmd.Flags().StringVar(&requestID, "request-id", "", "request ID (generated when empty)")
	return cmd
}

func newListenCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen for prover results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runner, client, cfg, err := initRunner(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := runner.Setup(ctx); err != nil {
				return err
			}

			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.ListenTimeout
			}
			_, _, err = runner.Listen(ctx, timeout)
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop listening after this duration (0 listens until interrupted)")
	return cmd
}

func newE2ECommand() *cobra.Command {
	return &cobra.Command{
		Use:   "e2e",
		Short: "Run the full end-to-end test",
		Long: `Provisions channels, publishes the well-formed scenarios, listens
for prover results, and verifies each result against the expected
human index. Requires a running prover.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runner, client, _, err := initRunner(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			return runner.RunE2E(ctx)
		},
	}
}
