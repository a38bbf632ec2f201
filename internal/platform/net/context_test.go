package net_test

import (
	"context"
	"testing"

	pnet "speakertag/internal/platform/net"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()

	ctx := pnet.WithRequest(base, "host/abc-000001")
	if got := pnet.RequestID(ctx); got != "host/abc-000001" {
		t.Fatalf("RequestID = %q", got)
	}
	if pnet.WithRequest(base, "") != base {
		t.Fatalf("empty id should return the same context")
	}
	if got := pnet.RequestID(base); got != "" {
		t.Fatalf("RequestID on bare context = %q", got)
	}
}
