package service

import (
	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"context"
)

type TokenService interface {
	Issue(ctx context.Context, account *domain.Account, twoFactor bool, ip, ua string) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string, ip, ua string) (*dto.TokenResponse, error)
	RevokeSession(ctx context.Context, sessionID domain.SessionID) error
	// VerifyAccess checks an access token and its session, returning the owner.
	VerifyAccess(ctx context.Context, accessToken string) (domain.UserID, error)
	// RevokeRefresh revokes the session a refresh token belongs to and returns its owner.
	RevokeRefresh(ctx context.Context, refreshToken string) (domain.UserID, error)
}
