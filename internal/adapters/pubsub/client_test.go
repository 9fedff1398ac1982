package pubsub

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"

	"github.com/0xer-org/zk/pkg/logger"
)

func newTestClient(t *testing.T) (*Client, context.Context) {
	t.Helper()

	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	// The in-process fake speaks the emulator protocol.
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)

	ctx := context.Background()
	client, err := New(ctx, WithProjectID("test-project"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client, ctx
}

func TestSetupIsIdempotent(t *testing.T) {
	client, ctx := newTestClient(t)

	channels := []Channel{
		{Topic: "prover-requests", Subscription: "prover-requests-sub"},
		{Topic: "prover-results", Subscription: "prover-results-sub"},
	}

	if err := client.Setup(ctx, channels...); err != nil {
		t.Fatalf("first setup failed: %v", err)
	}

	// Re-provisioning existing resources must not fail.
	if err := client.Setup(ctx, channels...); err != nil {
		t.Fatalf("second setup failed: %v", err)
	}
}

func TestPublishAndListen(t *testing.T) {
	client, ctx := newTestClient(t)

	if err := client.Setup(ctx, Channel{Topic: "prover-requests", Subscription: "prover-requests-sub"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	payload := []byte(`{"request_id":"req-1"}`)
	id, err := client.Publish(ctx, "prover-requests", payload)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if id == "" {
		t.Error("expected a server-assigned message ID")
	}

	received := make(chan []byte, 1)
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Listen(listenCtx, "prover-requests-sub", func(_ context.Context, data []byte) {
			select {
			case received <- data:
			default:
			}
			cancel()
		})
	}()

	select {
	case data := <-received:
		if string(data) != string(payload) {
			t.Errorf("received %q, want %q", data, payload)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	if err := <-errCh; err != nil {
		t.Errorf("listen returned error: %v", err)
	}
}

func TestListenTimeoutIsNotAnError(t *testing.T) {
	client, ctx := newTestClient(t)

	if err := client.Setup(ctx, Channel{Topic: "prover-results", Subscription: "prover-results-sub"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	listenCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	err := client.Listen(listenCtx, "prover-results-sub", func(context.Context, []byte) {
		t.Error("no message should arrive")
	})
	if err != nil {
		t.Errorf("bounded listen with no traffic should end cleanly, got: %v", err)
	}
}

func TestPublishToMissingTopic(t *testing.T) {
	client, ctx := newTestClient(t)

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Publish(pubCtx, "never-created", []byte("x")); err == nil {
		t.Error("expected publish to a missing topic to fail")
	}
}
