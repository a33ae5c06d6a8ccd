package service

import (
	"bookingauth/internal/domain"
	"context"
)

// TokenGenerator issues fresh short-lived tokens. Issuing for an identifier
// replaces whatever token of the same kind was live for it.
type TokenGenerator interface {
	GenerateVerificationToken(ctx context.Context, email string) (*domain.VerificationToken, error)
	GenerateTwoFactorToken(ctx context.Context, email string) (*domain.TwoFactorToken, error)
}
