package nats

import (
	"testing"
	"time"
)

func TestReindexMessageCarriesTimestamp(t *testing.T) {
	requestedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	payload, err := encodeReindexMessage("api request abc123", requestedAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := decodeReindexMessage(payload)
	if decoded.Reason != "api request abc123" {
		t.Errorf("reason = %q", decoded.Reason)
	}
	if !decoded.RequestedAt.Equal(requestedAt) {
		t.Errorf("requested_at = %v, want %v", decoded.RequestedAt, requestedAt)
	}
}

func TestDecodeReindexMessageBareString(t *testing.T) {
	decoded := decodeReindexMessage([]byte("manual rebuild"))

	if decoded.Reason != "manual rebuild" {
		t.Errorf("reason = %q, want the raw payload", decoded.Reason)
	}
	if !decoded.RequestedAt.IsZero() {
		t.Errorf("requested_at = %v, want zero", decoded.RequestedAt)
	}
}
