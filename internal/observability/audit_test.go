package observability

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestBuildAuditEventIncludesRequiredFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/transferNFT", nil)
	req.Header.Set("X-Request-Id", "req-test-1")
	req.RemoteAddr = "127.0.0.1:12345"

	ev := BuildAuditEvent(req, AuditInput{
		EventName:  "product.transfer",
		Actor:      "0xabc",
		TargetType: "product",
		TargetID:   "7",
		Action:     "transfer",
		Outcome:    "success",
		Reason:     "owner_updated",
	})

	if ev.EventVersion != 1 {
		t.Fatalf("expected event version 1, got %d", ev.EventVersion)
	}
	if ev.RequestID != "req-test-1" {
		t.Fatalf("unexpected request id: %s", ev.RequestID)
	}
	if ev.ActorIP != "127.0.0.1" {
		t.Fatalf("unexpected actor ip: %s", ev.ActorIP)
	}
	if _, err := time.Parse(time.RFC3339, ev.TS); err != nil {
		t.Fatalf("expected RFC3339 ts, got %q err=%v", ev.TS, err)
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestAuditEventValidateRejectsMissingEventName(t *testing.T) {
	ev := AuditEvent{
		EventVersion: 1,
		Actor:        "0xabc",
		ActorIP:      "127.0.0.1",
		TargetType:   "product",
		TargetID:     "7",
		Action:       "transfer",
		Outcome:      "success",
		Reason:       "ok",
		RequestID:    "req-1",
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
	if err := ev.Validate(); err == nil {
		t.Fatal("expected validation error for missing event_name")
	}
}
