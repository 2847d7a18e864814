package domain

import "time"

// AuthEventKind identifies the authentication flow that produced an event.
type AuthEventKind string

const (
	AuthEventSignup AuthEventKind = "signup"
	AuthEventLogin  AuthEventKind = "login"
)

// AuthEvent is an audit record of a signup or login attempt.
type AuthEvent struct {
	Kind       AuthEventKind
	Email      string
	Success    bool
	Reason     string // empty on success
	OccurredAt time.Time
}
