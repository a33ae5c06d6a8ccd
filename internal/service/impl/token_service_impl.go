package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/dto"
	"bookingauth/internal/netutil"
	"bookingauth/internal/observability/metrics"
	"bookingauth/internal/observability/middleware"
	"bookingauth/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "booking-auth"
	Audience   string        // e.g. "booking-clients"
	AccessTTL  time.Duration // e.g. 15 * time.Minute
	RefreshTTL time.Duration // e.g. 30 * 24h
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

const accessScope = "user"

type AccessClaims struct {
	SID       string `json:"sid"`           // session id
	TwoFactor bool   `json:"tfa,omitempty"` // session passed a two factor challenge
	Scope     string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	SID                  string `json:"sid"` // session id
	jwt.RegisteredClaims        // jti == refresh_id
}

// ====== Service ======

type sessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	GetByRefreshID(ctx context.Context, rid uuid.UUID) (*domain.Session, error)
	Rotate(ctx context.Context, id, refreshID uuid.UUID, expiresAt time.Time, ip, ua string) error
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
}

type TokenServiceImpl struct {
	cfg      TokenConfig
	sessions sessionStore
	now      func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig, st *store.Store) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, sessions: st.Sessions(), now: time.Now}
}

// Issue creates a Session row (with a fresh RefreshID) and returns access+refresh tokens.
func (t *TokenServiceImpl) Issue(
	ctx context.Context,
	account *domain.Account,
	twoFactor bool,
	ip, ua string,
) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("session_issue", result).Inc()
	}()
	ip = normalizeIP(ip)
	ua = netutil.TruncateUserAgent(ua)
	now := t.now().UTC()

	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    account.ID,
		RefreshID: uuid.New(),
		TwoFactor: twoFactor,
		ExpiresAt: now.Add(t.cfg.RefreshTTL),
		CreatedAt: now,
		IP:        ip,
		UserAgent: ua,
	}
	if err := t.sessions.Create(ctx, sess); err != nil {
		result = "failure"
		return nil, fmt.Errorf("create session: %w", err)
	}

	access, err := t.signAccess(account.ID, sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}
	refresh, err := t.signRefresh(account.ID, sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("issued tokens",
		"session_id", sess.ID,
		"user_id", account.ID,
		"two_factor", twoFactor,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

// Refresh validates the refresh JWT, checks session state, rotates refresh id, and returns new tokens.
func (t *TokenServiceImpl) Refresh(ctx context.Context, refreshToken string, ip, ua string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("session_refresh", result).Inc()
	}()
	ip = normalizeIP(ip)
	ua = netutil.TruncateUserAgent(ua)
	now := t.now().UTC()

	sess, err := t.liveSession(ctx, refreshToken, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	newRID := uuid.New()
	newExp := now.Add(t.cfg.RefreshTTL)
	if err := t.sessions.Rotate(ctx, sess.ID, newRID, newExp, ip, ua); err != nil {
		result = "failure"
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	sess.RefreshID = newRID
	sess.ExpiresAt = newExp

	accessJWT, err := t.signAccess(sess.UserID, sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}
	refreshJWT, err := t.signRefresh(sess.UserID, sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("refreshed tokens",
		"session_id", sess.ID,
		"user_id", sess.UserID,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)

	return &dto.TokenResponse{
		AccessToken:  accessJWT,
		RefreshToken: refreshJWT,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

func (t *TokenServiceImpl) RevokeSession(ctx context.Context, sessionID domain.SessionID) error {
	return t.sessions.Revoke(ctx, sessionID, t.now().UTC())
}

func (t *TokenServiceImpl) RevokeRefresh(ctx context.Context, refreshToken string) (domain.UserID, error) {
	now := t.now().UTC()
	sess, err := t.liveSession(ctx, refreshToken, now)
	if err != nil {
		return uuid.Nil, err
	}
	if err := t.sessions.Revoke(ctx, sess.ID, now); err != nil {
		return uuid.Nil, fmt.Errorf("revoke session: %w", err)
	}
	return sess.UserID, nil
}

// VerifyAccess validates the access JWT and requires its session to still be live.
func (t *TokenServiceImpl) VerifyAccess(ctx context.Context, accessToken string) (domain.UserID, error) {
	claims := &AccessClaims{}
	tok, err := t.parser().ParseWithClaims(accessToken, claims, t.keyFunc)
	// refresh tokens carry no scope
	if err != nil || !tok.Valid || claims.Scope != accessScope {
		return uuid.Nil, ErrInvalidToken
	}
	sid, err := uuid.Parse(claims.SID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	sess, err := t.sessions.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, err
	}
	if sess.RevokedAt != nil || sess.UserID.String() != claims.Subject {
		return uuid.Nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
	}
	return sess.UserID, nil
}

// ====== Helpers ======

// liveSession resolves a refresh JWT to its unrevoked, unexpired session row.
func (t *TokenServiceImpl) liveSession(ctx context.Context, refreshToken string, now time.Time) (*domain.Session, error) {
	parsed, claims, err := t.parseRefresh(refreshToken)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	rid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sess, err := t.sessions.GetByRefreshID(ctx, rid)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if sess.RevokedAt != nil || !now.Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("%w: session expired or revoked", ErrInvalidToken)
	}
	return sess, nil
}

func (t *TokenServiceImpl) signAccess(userID uuid.UUID, sess *domain.Session, now time.Time) (string, error) {
	claims := AccessClaims{
		SID:       sess.ID.String(),
		TwoFactor: sess.TwoFactor,
		Scope:     accessScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(), // unique per access token
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.SigningKey)
}

func (t *TokenServiceImpl) signRefresh(userID uuid.UUID, sess *domain.Session, now time.Time) (string, error) {
	claims := RefreshClaims{
		SID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sess.RefreshID.String(), // binds the JWT to the session row
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.SigningKey)
}

func (t *TokenServiceImpl) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithTimeFunc(t.now),
	)
}

func (t *TokenServiceImpl) keyFunc(*jwt.Token) (interface{}, error) {
	return t.cfg.SigningKey, nil
}

func (t *TokenServiceImpl) parseRefresh(tokenStr string) (*jwt.Token, *RefreshClaims, error) {
	claims := &RefreshClaims{}
	tok, err := t.parser().ParseWithClaims(tokenStr, claims, t.keyFunc)
	if err != nil {
		return nil, nil, err
	}
	return tok, claims, nil
}

func normalizeIP(ip string) string {
	if normalized, ok := netutil.NormalizeIP(ip); ok {
		return normalized
	}
	return strings.TrimSpace(ip)
}
