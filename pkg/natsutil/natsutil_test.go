package natsutil

import (
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*headerCarrier)(msg)

	if c.Get("traceparent") != "" {
		t.Error("empty carrier should return empty values")
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("got %q", got)
	}

	// nats.Header stores keys verbatim, no MIME canonicalization.
	keys := c.Keys()
	if len(keys) != 1 || keys[0] != "traceparent" {
		t.Errorf("unexpected keys: %v", keys)
	}
}
