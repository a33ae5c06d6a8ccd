package impl

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"bookingauth/internal/events"
	"bookingauth/internal/observability/metrics"
	"bookingauth/internal/observability/middleware"
	"bookingauth/internal/service"
	"bookingauth/internal/store"

	"github.com/google/uuid"
)

// AuthServiceImpl runs the login state machine and the flows that share its
// tokens. It is the error boundary: Login folds every failure into an outcome.
type AuthServiceImpl struct {
	Store           tokenRepository
	Tokens          service.TokenGenerator
	Notifier        service.NotificationService
	Sessions        service.SessionIssuer
	PasswordService service.PasswordService
	TService        service.TokenService
	Events          events.Publisher
	Now             func() time.Time
}

func NewAuthServiceImpl(
	st *store.Store,
	tokens service.TokenGenerator,
	notifier service.NotificationService,
	sessions service.SessionIssuer,
	passwordService service.PasswordService,
	tokenService service.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		Tokens:          tokens,
		Notifier:        notifier,
		Sessions:        sessions,
		PasswordService: passwordService,
		TService:        tokenService,
		Events:          events.LogPublisher{},
	}
}

func (a *AuthServiceImpl) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *AuthServiceImpl) publish(ctx context.Context, e events.Event) {
	if a.Events != nil {
		a.Events.Publish(ctx, e)
	}
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) *dto.LoginResponse {
	outcome, tokens := a.login(ctx, r, ip, ua)
	metrics.AuthLoginsTotal.WithLabelValues(string(outcome)).Inc()

	resp := dto.NewLoginResponse(outcome)
	resp.Tokens = tokens
	return resp
}

// login gates run in a fixed order: email verification, then the two factor
// challenge, then the password. An earlier gate always short-circuits.
func (a *AuthServiceImpl) login(ctx context.Context, r dto.LoginRequest, ip, ua string) (domain.LoginOutcome, *dto.TokenResponse) {
	if err := dto.Validate(r); err != nil {
		return domain.OutcomeInvalidFields, nil
	}

	// 1) account lookup; "no account" and "no password" look the same outside
	account, err := a.Store.Accounts().GetByEmail(ctx, r.Email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.OutcomeAccountNotFound, nil
		}
		return a.fail(ctx, "load account", err), nil
	}
	cred, err := a.Store.Credentials().GetPasswordByUserID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.OutcomeAccountNotFound, nil
		}
		return a.fail(ctx, "load credential", err), nil
	}

	// 2) unverified accounts only ever get a fresh verification email
	if !account.IsEmailVerified() {
		tok, err := a.Tokens.GenerateVerificationToken(ctx, account.Email)
		if err != nil {
			return a.fail(ctx, "generate verification token", err), nil
		}
		if err := a.Notifier.SendVerification(ctx, tok.Email, tok.Token); err != nil {
			return a.fail(ctx, "send verification email", err), nil
		}
		return domain.OutcomeConfirmationEmailSent, nil
	}

	// 3) two factor challenge
	if account.IsTwoFactorEnabled {
		if r.Code == "" {
			tok, err := a.Tokens.GenerateTwoFactorToken(ctx, account.Email)
			if err != nil {
				return a.fail(ctx, "generate two factor token", err), nil
			}
			if err := a.Notifier.SendTwoFactorCode(ctx, tok.Email, tok.Token); err != nil {
				return a.fail(ctx, "send two factor code", err), nil
			}
			return domain.OutcomeTwoFactorRequired, nil
		}
		if outcome, passed := a.confirmTwoFactor(ctx, account, r.Code); !passed {
			return outcome, nil
		}
	}

	// 4) password check + session
	res := a.Sessions.Establish(ctx, service.SessionRequest{
		Account:    account,
		Credential: cred,
		Password:   r.Password,
		IP:         ip,
		UserAgent:  ua,
	})
	switch res.Status {
	case service.SessionOK:
		return domain.OutcomeLoginSuccessful, res.Tokens
	case service.SessionCredentialsInvalid:
		return domain.OutcomeInvalidCredentials, nil
	case service.SessionOther:
		return a.fail(ctx, "establish session", res.Err), nil
	default:
		return a.fail(ctx, "establish session", fmt.Errorf("unexpected session status %v", res.Status)), nil
	}
}

// confirmTwoFactor consumes the stored code when it matches and has not
// expired, then resets the account's confirmation. The token is deleted
// before anything else can fail so a used code can never be replayed.
func (a *AuthServiceImpl) confirmTwoFactor(ctx context.Context, account *domain.Account, code string) (domain.LoginOutcome, bool) {
	tok, err := a.Store.TwoFactorTokens().GetByEmail(ctx, account.Email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.OutcomeInvalidCode, false
		}
		return a.fail(ctx, "load two factor token", err), false
	}
	if subtle.ConstantTimeCompare([]byte(tok.Token), []byte(code)) != 1 {
		return domain.OutcomeInvalidCode, false
	}
	now := a.now()
	if tok.Expired(now) {
		return domain.OutcomeCodeExpired, false
	}

	if err := a.Store.TwoFactorTokens().Delete(ctx, tok.ID); err != nil {
		return a.fail(ctx, "delete two factor token", err), false
	}
	conf := &domain.TwoFactorConfirmation{ID: uuid.New(), UserID: account.ID, CreatedAt: now}
	if err := a.Store.TwoFactorConfirmations().Replace(ctx, conf); err != nil {
		return a.fail(ctx, "replace two factor confirmation", err), false
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(domain.KindTwoFactorConfirmation), "success").Inc()
	a.publish(ctx, events.TwoFactorConfirmed{UserID: account.ID.String(), At: now})
	return "", true
}

// fail logs an infrastructure failure for operators and hides it from the caller.
func (a *AuthServiceImpl) fail(ctx context.Context, op string, err error) domain.LoginOutcome {
	slog.Error("login failed",
		"op", op,
		"error", err,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)
	return domain.OutcomeUnknownError
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (resp *dto.RegisterResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if err := dto.Validate(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}

	if _, err := a.Store.Accounts().GetByEmail(ctx, r.Email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, err
	}

	now := a.now()
	account := &domain.Account{
		ID:        uuid.New(),
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = a.Store.WithTx(ctx, func(tx tokenRepository) error {
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return err
		}
		return tx.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
			ID:          uuid.New(),
			UserID:      account.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}
	a.publish(ctx, events.UserRegistered{UserID: account.ID.String(), Email: account.Email, At: now})

	tok, err := a.Tokens.GenerateVerificationToken(ctx, account.Email)
	if err != nil {
		return nil, err
	}
	if err := a.Notifier.SendVerification(ctx, tok.Email, tok.Token); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:                    account.ID.String(),
		RequiresEmailVerification: true,
		Message:                   domain.OutcomeConfirmationEmailSent.Message(),
	}, nil
}

// VerifyEmail consumes a verification token and marks its address verified.
func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenNotFound
	}
	tok, err := a.Store.VerificationTokens().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrTokenNotFound
		}
		return err
	}
	now := a.now()
	if tok.Expired(now) {
		return domain.ErrTokenExpired
	}

	account, err := a.Store.Accounts().GetByEmail(ctx, tok.Email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		return err
	}

	err = a.Store.WithTx(ctx, func(tx tokenRepository) error {
		if err := tx.Accounts().MarkEmailVerified(ctx, account.ID, tok.Email, now); err != nil {
			return err
		}
		return tx.VerificationTokens().Delete(ctx, tok.ID)
	})
	if err != nil {
		return err
	}
	a.publish(ctx, events.EmailVerified{UserID: account.ID.String(), Email: tok.Email, At: now})
	return nil
}

// SetTwoFactor toggles the two factor gate for an account. Turning it off also
// drops any standing confirmation so re-enabling starts from a fresh challenge.
func (a *AuthServiceImpl) SetTwoFactor(ctx context.Context, userID domain.UserID, enabled bool) error {
	if _, err := a.Store.Accounts().GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return a.Store.WithTx(ctx, func(tx tokenRepository) error {
		if err := tx.Accounts().SetTwoFactorEnabled(ctx, userID, enabled); err != nil {
			return err
		}
		if enabled {
			return nil
		}
		return tx.TwoFactorConfirmations().DeleteByUserID(ctx, userID)
	})
}

// Logout revokes the session behind refreshToken and clears the account's
// two factor confirmation.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	userID, err := a.TService.RevokeRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := a.Store.TwoFactorConfirmations().DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	a.publish(ctx, events.SessionRevoked{UserID: userID.String(), At: a.now()})
	return nil
}
