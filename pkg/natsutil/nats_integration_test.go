//go:build integration

package natsutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func natsURL() string {
	if v := os.Getenv("NATS_URL"); v != "" {
		return v
	}
	return nats.DefaultURL
}

func connect(t *testing.T) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(natsURL())
	if err != nil {
		t.Skipf("nats unavailable: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	nc := connect(t)

	type event struct {
		Batch int `json:"batch"`
	}

	ch := make(chan event, 1)
	sub, err := Subscribe(nc, "advisor.test.roundtrip", func(_ context.Context, e event) {
		ch <- e
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if err := Publish(context.Background(), nc, "advisor.test.roundtrip", event{Batch: 7}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case e := <-ch:
		if e.Batch != 7 {
			t.Errorf("got %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}
