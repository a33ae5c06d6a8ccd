package events

import (
	"context"
	"log/slog"
	"time"

	"bookingauth/internal/observability/middleware"
)

// Event is a domain fact published after it has been committed.
type Event interface {
	Name() string
}

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

func (UserRegistered) Name() string { return "user.registered" }

type EmailVerified struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

func (EmailVerified) Name() string { return "user.email_verified" }

type TwoFactorConfirmed struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

func (TwoFactorConfirmed) Name() string { return "user.two_factor_confirmed" }

type SessionRevoked struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

func (SessionRevoked) Name() string { return "session.revoked" }

// Publisher receives domain events. Publish must not block the request.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher writes every event to the default logger.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) {
	slog.Info("domain event",
		"event", e.Name(),
		"payload", e,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
}

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.Events = append(r.Events, e)
}

// Names lists the recorded event names in publish order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name()
	}
	return names
}
