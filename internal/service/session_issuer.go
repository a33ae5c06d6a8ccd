package service

import (
	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"context"
)

// SessionStatus tags the result of a session establishment attempt.
type SessionStatus int

const (
	SessionOK SessionStatus = iota
	SessionCredentialsInvalid
	SessionOther
)

func (s SessionStatus) String() string {
	switch s {
	case SessionOK:
		return "ok"
	case SessionCredentialsInvalid:
		return "credentials_invalid"
	default:
		return "other"
	}
}

type SessionRequest struct {
	Account    *domain.Account
	Credential *domain.PasswordCredential
	Password   string
	IP         string
	UserAgent  string
}

// SessionResult is returned, never thrown: Tokens is set for SessionOK, Err
// carries the cause for SessionOther.
type SessionResult struct {
	Status SessionStatus
	Tokens *dto.TokenResponse
	Err    error
}

// SessionIssuer checks the password and, when it matches, establishes a
// session. It never redirects; the caller decides what to show.
type SessionIssuer interface {
	Establish(ctx context.Context, req SessionRequest) SessionResult
}
