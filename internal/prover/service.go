// Package prover implements the proof service: it consumes prover
// requests from a subscription, emulates proof generation over the
// human index computation, and publishes results.
//
// The real proving pipeline runs a zkVM guest program; this service
// reproduces its observable contract (request validation, the computed
// index, timing metrics, bounded concurrency, and the
// success/failed/timeout result shapes) with the proof artifacts
// derived deterministically from the request.
package prover

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"

	"github.com/0xer-org/zk/internal/adapters/pubsub"
	"github.com/0xer-org/zk/internal/domain/humanindex"
	"github.com/0xer-org/zk/pkg/logger"
	"github.com/0xer-org/zk/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxConcurrent = 2
	defaultProofTimeout  = time.Hour
	defaultMinLatency    = 80 * time.Millisecond
	defaultMaxLatency    = 150 * time.Millisecond
	defaultRandomSeed    = 42
)

// Broker abstracts the transport the service runs on.
type Broker interface {
	Receive(ctx context.Context, subscriptionID string, fn pubsub.ReceiveFunc) error
	Publish(ctx context.Context, topicID string, data []byte) (string, error)
}

// Service consumes prover requests and publishes results.
type Service struct {
	broker       Broker
	subscription string
	resultTopic  string

	maxConcurrent int
	proofTimeout  time.Duration
	// Emulated proof latency range
	minLatency time.Duration
	maxLatency time.Duration

	// rng drives the latency emulation; deterministic for testing.
	mu  sync.Mutex
	rng *rand.Rand

	// First proof after startup reports setup_required, matching the
	// one-time key generation of the real pipeline.
	setupDone atomic.Bool

	// Concurrency slots
	sem chan struct{}

	logger logger.Logger
}

// New creates a prover service with configuration options.
func New(broker Broker, subscription, resultTopic string, opts ...Option) *Service {
	s := &Service{
		broker:        broker,
		subscription:  subscription,
		resultTopic:   resultTopic,
		maxConcurrent: defaultMaxConcurrent,
		proofTimeout:  defaultProofTimeout,
		minLatency:    defaultMinLatency,
		maxLatency:    defaultMaxLatency,
		rng:           rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
		logger:        logger.Get().Named("prover"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.sem = make(chan struct{}, s.maxConcurrent)

	return s
}

// Run processes requests until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting prover service",
		logger.String("subscription", s.subscription),
		logger.String("resultTopic", s.resultTopic),
		logger.Int("maxConcurrentProofs", s.maxConcurrent),
		logger.Duration("proofTimeout", s.proofTimeout))

	return s.broker.Receive(ctx, s.subscription, s.handleMessage)
}

// handleMessage processes one broker message end to end.
func (s *Service) handleMessage(ctx context.Context, msg *gcppubsub.Message) {
	// Try to acquire a proof slot without blocking the receive loop.
	select {
	case s.sem <- struct{}{}:
	default:
		metrics.RecordRejectedRequest()
		s.logger.Warn(ctx, "too many concurrent proofs, nacking message")
		msg.Nack()
		return
	}
	defer func() {
		<-s.sem
		metrics.UpdateActiveProofs(len(s.sem))
	}()
	metrics.UpdateActiveProofs(len(s.sem))

	receivedAt := time.Now().UTC()

	// Ack immediately: proof generation can outlive any ack deadline,
	// and a redelivered request would burn another slot for hours.
	msg.Ack()

	response, err := s.process(ctx, msg.Data, receivedAt)
	if err != nil {
		// Already acked; the request is dropped without a result.
		s.logger.Error(ctx, "failed to process message", logger.Error(err))
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error(ctx, "failed to marshal result",
			logger.String("requestID", response.RequestID),
			logger.Error(err))
		return
	}

	if _, err := s.broker.Publish(ctx, s.resultTopic, data); err != nil {
		s.logger.Error(ctx, "failed to publish result",
			logger.String("requestID", response.RequestID),
			logger.Error(err))
		return
	}

	metrics.RecordResultPublished(response.Status)
	s.logger.Debug(ctx, "result published",
		logger.String("requestID", response.RequestID),
		logger.String("status", response.Status))
}

// process validates a request and produces the response to publish.
// A request that cannot be decoded yields an error and no response.
func (s *Service) process(ctx context.Context, data []byte, receivedAt time.Time) (*humanindex.ProverResponse, error) {
	request, err := humanindex.DecodeRequest(data)
	if err != nil {
		return nil, fmt.Errorf("invalid prover request: %w", err)
	}

	s.logger.Info(ctx, "processing proof request", logger.String("requestID", request.RequestID))
	metrics.RecordProofRequest()

	startedAt := time.Now().UTC()
	setupRequired := !s.setupDone.Swap(true)

	index, timedOut, err := s.generate(ctx, request)

	completedAt := time.Now().UTC()
	durationMS := uint64(completedAt.Sub(receivedAt).Milliseconds())
	metrics.RecordProofLatency(float64(durationMS))

	proofMetrics := humanindex.ProofMetrics{
		ReceivedAt:    receivedAt.Format(time.RFC3339),
		StartedAt:     startedAt.Format(time.RFC3339),
		CompletedAt:   completedAt.Format(time.RFC3339),
		DurationMS:    durationMS,
		SetupRequired: setupRequired,
	}

	switch {
	case err != nil:
		return nil, err

	case timedOut:
		s.logger.Warn(ctx, "proof generation timed out",
			logger.String("requestID", request.RequestID),
			logger.Duration("proofTimeout", s.proofTimeout))
		metrics.RecordProofError("TimeoutError")
		proofMetrics.SetupRequired = false
		return humanindex.TimeoutResponse(
			request.RequestID,
			fmt.Sprintf("Proof generation timed out after %s", s.proofTimeout),
			&proofMetrics,
		), nil

	case index != request.PublicInputs.ExpectedOutput:
		s.logger.Error(ctx, "computed output does not match expected output",
			logger.String("requestID", request.RequestID),
			logger.Uint32("computed", index),
			logger.Uint32("expected", request.PublicInputs.ExpectedOutput))
		metrics.RecordProofError("ProofGenerationError")
		proofMetrics.SetupRequired = false
		return humanindex.FailedResponse(
			request.RequestID,
			humanindex.ProofError{
				ErrorType: "ProofGenerationError",
				Message: fmt.Sprintf("computed output %d does not match expected output %d",
					index, request.PublicInputs.ExpectedOutput),
			},
			&proofMetrics,
		), nil

	default:
		s.logger.Info(ctx, "proof generated",
			logger.String("requestID", request.RequestID),
			logger.Uint32("humanIndex", index),
			logger.Any("durationMS", durationMS),
			logger.Any("setupRequired", setupRequired))
		proof, artifactErr := buildProofData(data, request.PublicInputs, index)
		if artifactErr != nil {
			return nil, artifactErr
		}
		return humanindex.SuccessResponse(request.RequestID, proof, proofMetrics), nil
	}
}

// generate emulates the proving run: it computes the index and sleeps
// for the configured latency, honoring the proof timeout and ctx.
func (s *Service) generate(ctx context.Context, request *humanindex.ProverRequest) (index uint32, timedOut bool, err error) {
	index = humanindex.Compute(request.VerificationResults, request.PublicInputs)

	latency := s.proofLatency()
	if latency > s.proofTimeout {
		// Wait out the timeout budget before reporting, like a real
		// prover that is cut off mid-run.
		select {
		case <-ctx.Done():
			return 0, false, fmt.Errorf("proof cancelled: %w", ctx.Err())
		case <-time.After(s.proofTimeout):
			return 0, true, nil
		}
	}

	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("proof cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return index, false, nil
	}
}

// proofLatency draws the emulated proving duration.
func (s *Service) proofLatency() time.Duration {
	if s.maxLatency <= s.minLatency {
		return s.minLatency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
}

// buildProofData derives deterministic stand-ins for the proof
// artifacts. The public inputs blob is the real committed structure;
// the proof and verification key are digests of the request.
func buildProofData(requestData []byte, inputs humanindex.PublicInputs, index uint32) (humanindex.ProofData, error) {
	committed, err := json.Marshal(humanindex.PublicValues{
		Inputs:         inputs,
		ComputedOutput: index,
	})
	if err != nil {
		return humanindex.ProofData{}, fmt.Errorf("failed to marshal public values: %w", err)
	}

	proofDigest := sha256.Sum256(requestData)
	vkDigest := sha256.Sum256(committed)

	return humanindex.ProofData{
		Proof:           base64.StdEncoding.EncodeToString(proofDigest[:]),
		PublicInputs:    base64.StdEncoding.EncodeToString(committed),
		VerificationKey: base64.StdEncoding.EncodeToString(vkDigest[:]),
		HumanIndex:      index,
	}, nil
}
