package prover_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"

	"github.com/0xer-org/zk/internal/adapters/pubsub"
	"github.com/0xer-org/zk/internal/domain/humanindex"
	"github.com/0xer-org/zk/internal/fixture"
	"github.com/0xer-org/zk/internal/prover"
	"github.com/0xer-org/zk/pkg/logger"
)

// End-to-end flow against the in-process fake: publish a request on
// the request topic, run the service, read the result subscription.
func TestServiceEndToEnd(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)

	ctx := context.Background()
	client, err := pubsub.New(ctx, pubsub.WithProjectID("test-project"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	channels := []pubsub.Channel{
		{Topic: "prover-requests", Subscription: "prover-requests-sub"},
		{Topic: "prover-results", Subscription: "prover-results-sub"},
	}
	if err := client.Setup(ctx, channels...); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	svc := prover.New(client, "prover-requests-sub", "prover-results",
		prover.WithProofLatency(time.Millisecond, 2*time.Millisecond),
	)

	runCtx, stopService := context.WithCancel(ctx)
	defer stopService()
	serviceDone := make(chan error, 1)
	go func() {
		serviceDone <- svc.Run(runCtx)
	}()

	data, err := fixture.Payload("e2e-normal", fixture.Normal)
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	if _, err := client.Publish(ctx, "prover-requests", data); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	results := make(chan humanindex.ProverResponse, 1)
	listenCtx, stopListen := context.WithTimeout(ctx, 15*time.Second)
	defer stopListen()
	go func() {
		_ = client.Listen(listenCtx, "prover-results-sub", func(_ context.Context, data []byte) {
			var resp humanindex.ProverResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				t.Errorf("result did not decode: %v", err)
				return
			}
			select {
			case results <- resp:
			default:
			}
			stopListen()
		})
	}()

	select {
	case resp := <-results:
		if resp.RequestID != "e2e-normal" {
			t.Errorf("request ID = %q", resp.RequestID)
		}
		if resp.Status != humanindex.StatusSuccess {
			t.Errorf("status = %q, error = %+v", resp.Status, resp.Error)
		}
		if resp.Proof == nil || resp.Proof.HumanIndex != 204 {
			t.Errorf("proof = %+v, want human index 204", resp.Proof)
		}
	case <-listenCtx.Done():
		t.Fatal("timed out waiting for result")
	}

	stopService()
	select {
	case err := <-serviceDone:
		if err != nil {
			t.Errorf("service returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}
