package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerRegistersOnCustomRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("test"),
		WithSubsystem("harness"),
		WithPrometheusRegistry(registry),
	)

	if m == nil {
		t.Fatal("manager is nil")
	}

	// Touch a couple of metrics so they show up in the gather.
	m.messagesPublished.WithLabelValues("prover-requests").Inc()
	m.proofLatency.Observe(12.5)
	m.resultsPublished.WithLabelValues("success").Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"test_harness_messages_published_total",
		"test_harness_proof_latency_milliseconds",
		"test_harness_results_published_total",
	} {
		if !names[want] {
			t.Errorf("metric %q not registered", want)
		}
	}
}

func TestPackageHelpersDoNotPanic(t *testing.T) {
	RecordMessagePublished("prover-requests")
	RecordMessageReceived("prover-results-sub")
	RecordPublishError("prover-requests")
	RecordProofRequest()
	RecordProofLatency(80)
	RecordProofError("ProofGenerationError")
	UpdateActiveProofs(1)
	RecordRejectedRequest()
	RecordResultPublished("success")

	if GetRegistry() == nil {
		t.Fatal("global registry is nil")
	}
}
