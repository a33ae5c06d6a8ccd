package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/service"
	"bookingauth/internal/store"
)

// CredentialsSessionIssuer establishes sessions for password logins.
type CredentialsSessionIssuer struct {
	Store           tokenRepository
	PasswordService service.PasswordService
	TService        service.TokenService
}

func NewCredentialsSessionIssuer(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *CredentialsSessionIssuer {
	return &CredentialsSessionIssuer{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		TService:        tokenService,
	}
}

func (s *CredentialsSessionIssuer) Establish(ctx context.Context, req service.SessionRequest) service.SessionResult {
	if req.Account == nil || req.Credential == nil {
		return service.SessionResult{Status: service.SessionCredentialsInvalid}
	}

	rehashNeeded, ok := s.PasswordService.Verify(req.Password, req.Credential)
	if !ok {
		return service.SessionResult{Status: service.SessionCredentialsInvalid}
	}

	// transparent rehash (policy upgrade or legacy bcrypt)
	if rehashNeeded {
		if err := s.rehash(ctx, req); err != nil {
			return other(fmt.Errorf("rehash password: %w", err))
		}
	}

	// A two factor account only gets a session once its code was confirmed.
	if req.Account.IsTwoFactorEnabled {
		if _, err := s.Store.TwoFactorConfirmations().GetByUserID(ctx, req.Account.ID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return other(domain.ErrTwoFactorRequired)
			}
			return other(fmt.Errorf("load two factor confirmation: %w", err))
		}
	}

	tokens, err := s.TService.Issue(ctx, req.Account, req.Account.IsTwoFactorEnabled, req.IP, req.UserAgent)
	if err != nil {
		return other(fmt.Errorf("issue tokens: %w", err))
	}
	return service.SessionResult{Status: service.SessionOK, Tokens: tokens}
}

func (s *CredentialsSessionIssuer) rehash(ctx context.Context, req service.SessionRequest) error {
	hash, salt, paramsJSON, algo, ver, err := s.PasswordService.Hash(req.Password)
	if err != nil {
		return err
	}
	cred := *req.Credential
	cred.Algo = algo
	cred.Hash = hash
	cred.Salt = salt
	cred.ParamsJSON = paramsJSON
	cred.PasswordVer = ver
	cred.UpdatedAt = time.Now().UTC()
	return s.Store.Credentials().UpsertPassword(ctx, &cred)
}

func other(err error) service.SessionResult {
	return service.SessionResult{Status: service.SessionOther, Err: err}
}
