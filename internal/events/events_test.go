package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	r.Publish(context.Background(), UserRegistered{UserID: "u1"})
	r.Publish(context.Background(), EmailVerified{UserID: "u1"})

	names := r.Names()
	if len(names) != 2 || names[0] != "user.registered" || names[1] != "user.email_verified" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogPublisher{}.Publish(context.Background(), SessionRevoked{UserID: "u1", At: time.Unix(0, 0).UTC()})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["event"] != "session.revoked" {
		t.Fatalf("unexpected event field: %v", line["event"])
	}
	payload, ok := line["payload"].(map[string]any)
	if !ok || payload["userId"] != "u1" {
		t.Fatalf("unexpected payload: %v", line["payload"])
	}
}
