// Package harness drives the prover pipeline against an emulator:
// provisioning channels, publishing scenario fixtures, and listening
// for prover results.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/0xer-org/zk/internal/adapters/pubsub"
	"github.com/0xer-org/zk/internal/config"
	"github.com/0xer-org/zk/internal/domain/humanindex"
	"github.com/0xer-org/zk/internal/fixture"
	"github.com/0xer-org/zk/pkg/logger"
)

// Broker abstracts the transport operations the harness needs.
type Broker interface {
	Setup(ctx context.Context, channels ...pubsub.Channel) error
	Publish(ctx context.Context, topicID string, data []byte) (string, error)
	Listen(ctx context.Context, subscriptionID string, handler pubsub.Handler) error
}

// Stats holds counters for a harness run.
type Stats struct {
	MessagesPublished int
	ResultsReceived   int
	ResultsDecoded    int
	ResultsVerified   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Runner executes harness operations against a broker.
type Runner struct {
	broker Broker
	cfg    *config.Config
	logger logger.Logger
}

// NewRunner creates a harness runner.
func NewRunner(broker Broker, cfg *config.Config) *Runner {
	return &Runner{
		broker: broker,
		cfg:    cfg,
		logger: logger.Get().Named("harness"),
	}
}

// channels lists the request and result channel pairs from config.
func (r *Runner) channels() []pubsub.Channel {
	return []pubsub.Channel{
		{Topic: r.cfg.ProverTopic, Subscription: r.cfg.ProverSubscription},
		{Topic: r.cfg.ResultTopic, Subscription: r.cfg.ResultSubscription},
	}
}

// Setup provisions both topic/subscription pairs.
func (r *Runner) Setup(ctx context.Context) error {
	r.logger.Info(ctx, "setting up topics and subscriptions",
		logger.String("projectID", r.cfg.ProjectID))

	if err := r.broker.Setup(ctx, r.channels()...); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	r.logger.Info(ctx, "setup complete")
	return nil
}

// PublishScenario builds the fixture for a scenario and publishes it
// on the request topic. An empty requestID generates a unique one.
func (r *Runner) PublishScenario(ctx context.Context, sc fixture.Scenario, requestID string) (string, error) {
	if requestID == "" {
		requestID = fixture.NewRequestID(sc)
	}

	payload, err := fixture.Payload(requestID, sc)
	if err != nil {
		return "", err
	}

	messageID, err := r.broker.Publish(ctx, r.cfg.ProverTopic, payload)
	if err != nil {
		return "", fmt.Errorf("failed to publish %s message: %w", sc, err)
	}

	r.logger.Info(ctx, "published test message",
		logger.String("messageID", messageID),
		logger.String("requestID", requestID),
		logger.String("scenario", sc.String()),
		logger.Int("bytes", len(payload)))
	return requestID, nil
}

// Listen collects prover results from the result subscription until
// the timeout elapses or ctx is cancelled. A zero timeout listens
// until interrupted. Results that fail to decode are logged raw and
// counted but not returned.
func (r *Runner) Listen(ctx context.Context, timeout time.Duration) ([]humanindex.ProverResponse, *Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	listenCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		listenCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		r.logger.Info(ctx, "listening for results",
			logger.String("subscription", r.cfg.ResultSubscription),
			logger.Duration("timeout", timeout))
	} else {
		r.logger.Info(ctx, "listening for results until interrupted",
			logger.String("subscription", r.cfg.ResultSubscription))
	}

	var mu sync.Mutex
	var results []humanindex.ProverResponse

	err := r.broker.Listen(listenCtx, r.cfg.ResultSubscription, func(ctx context.Context, data []byte) {
		mu.Lock()
		defer mu.Unlock()
		stats.ResultsReceived++

		var resp humanindex.ProverResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			r.logger.Warn(ctx, "received undecodable result",
				logger.Error(err),
				logger.String("raw", string(data)))
			return
		}
		stats.ResultsDecoded++
		results = append(results, resp)

		r.logger.Info(ctx, "received result",
			logger.String("requestID", resp.RequestID),
			logger.String("status", resp.Status),
			logger.Any("result", resp))
	})

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if err != nil {
		return nil, stats, fmt.Errorf("listen failed: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return results, stats, nil
}

// RunE2E provisions channels, publishes one well-formed message per
// scenario, listens for the corresponding results, and verifies them.
func (r *Runner) RunE2E(ctx context.Context) error {
	stats := &Stats{StartTime: time.Now()}

	if err := r.Setup(ctx); err != nil {
		return err
	}

	// Publish the well-formed scenarios and remember what the prover
	// must reproduce for each.
	expected := make(map[string]uint32)
	for _, sc := range []fixture.Scenario{fixture.Normal, fixture.Boundary} {
		requestID, err := r.PublishScenario(ctx, sc, "")
		if err != nil {
			return err
		}
		req, err := fixture.Request(requestID, sc)
		if err != nil {
			return err
		}
		expected[requestID] = req.PublicInputs.ExpectedOutput
		stats.MessagesPublished++
	}

	results, listenStats, err := r.Listen(ctx, r.cfg.ListenTimeout)
	if err != nil {
		return err
	}
	stats.ResultsReceived = listenStats.ResultsReceived
	stats.ResultsDecoded = listenStats.ResultsDecoded

	verified, err := VerifyResults(expected, results)
	stats.ResultsVerified = verified
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.displayFinalStats(ctx, stats)

	if err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	r.logger.Info(ctx, "end-to-end test completed successfully")
	return nil
}

// displayFinalStats prints the final run statistics.
func (r *Runner) displayFinalStats(ctx context.Context, stats *Stats) {
	r.logger.Info(ctx, "final statistics",
		logger.Int("messagesPublished", stats.MessagesPublished),
		logger.Int("resultsReceived", stats.ResultsReceived),
		logger.Int("resultsDecoded", stats.ResultsDecoded),
		logger.Int("resultsVerified", stats.ResultsVerified),
		logger.Duration("duration", stats.Duration))
}
