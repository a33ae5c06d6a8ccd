package service

import (
	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"context"
)

// AuthService is the caller-facing surface of the login core. Login never
// returns an error: every failure is folded into the response outcome.
type AuthService interface {
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) *dto.LoginResponse
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	Logout(ctx context.Context, refreshToken string) error
	SetTwoFactor(ctx context.Context, userID domain.UserID, enabled bool) error
}
