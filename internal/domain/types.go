package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type SessionID = uuid.UUID
type CredentialID = uuid.UUID
type TokenID = uuid.UUID

// TokenKind names the short-lived records the login flow issues.
type TokenKind string

const (
	KindVerification          TokenKind = "verification"
	KindTwoFactor             TokenKind = "two_factor"
	KindTwoFactorConfirmation TokenKind = "two_factor_confirmation"
)
