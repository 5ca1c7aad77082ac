package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// AuditInput is the caller-facing shape for emitting an audit event.
type AuditInput struct {
	EventName  string
	Actor      string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

// AuditEvent is the stable wire shape of one audit log line.
type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	Actor        string `json:"actor"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TS           string `json:"ts"`
}

func (e AuditEvent) Validate() error {
	if e.EventVersion != 1 {
		return fmt.Errorf("unsupported audit event version %d", e.EventVersion)
	}
	if strings.TrimSpace(e.EventName) == "" {
		return fmt.Errorf("audit event_name is required")
	}
	if strings.TrimSpace(e.Action) == "" || strings.TrimSpace(e.Outcome) == "" {
		return fmt.Errorf("audit action and outcome are required")
	}
	return nil
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	actorIP := r.RemoteAddr
	if i := strings.LastIndex(actorIP, ":"); i > 0 {
		actorIP = actorIP[:i]
	}
	return AuditEvent{
		EventVersion: 1,
		EventName:    in.EventName,
		Actor:        in.Actor,
		ActorIP:      actorIP,
		TargetType:   in.TargetType,
		TargetID:     in.TargetID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       in.Reason,
		RequestID:    r.Header.Get("X-Request-Id"),
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

// EmitAudit logs one structured audit line for a state-changing operation.
// Extra attrs are appended verbatim.
func EmitAudit(r *http.Request, in AuditInput, attrs ...any) {
	ev := BuildAuditEvent(r, in)
	base := []any{
		"event_version", ev.EventVersion,
		"event", ev.EventName,
		"actor", ev.Actor,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}
