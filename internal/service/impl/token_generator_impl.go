package impl

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/observability/metrics"
	"bookingauth/internal/store"

	"github.com/google/uuid"
)

// Two factor codes are drawn uniformly from [100000, 999999] so they never
// carry a leading zero.
const (
	twoFactorCodeMin  = 100000
	twoFactorCodeSpan = 900000
)

type TokenGeneratorImpl struct {
	Store tokenRepository
	Now   func() time.Time
	Rand  io.Reader
}

func NewTokenGenerator(st *store.Store) *TokenGeneratorImpl {
	return &TokenGeneratorImpl{Store: gormStoreAdapter{store: st}}
}

func (g *TokenGeneratorImpl) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

func (g *TokenGeneratorImpl) entropy() io.Reader {
	if g.Rand != nil {
		return g.Rand
	}
	return rand.Reader
}

// GenerateVerificationToken replaces any verification token for email with a
// fresh one valid for an hour.
func (g *TokenGeneratorImpl) GenerateVerificationToken(ctx context.Context, email string) (tok *domain.VerificationToken, err error) {
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(string(domain.KindVerification), metrics.Result(err)).Inc()
	}()

	now := g.now()
	tok = &domain.VerificationToken{
		ID:        uuid.New(),
		Email:     email,
		Token:     domain.VerificationTokenPrefix + uuid.NewString(),
		ExpiresAt: now.Add(domain.VerificationTokenTTL),
		CreatedAt: now,
	}
	if err = g.Store.VerificationTokens().Replace(ctx, tok); err != nil {
		return nil, fmt.Errorf("replace verification token: %w", err)
	}
	slog.Debug("issued token", "kind", domain.KindVerification, "token_id", tok.ID, "expires_at", tok.ExpiresAt)
	return tok, nil
}

// GenerateTwoFactorToken replaces any two factor token for email with a new
// six digit code valid for five minutes.
func (g *TokenGeneratorImpl) GenerateTwoFactorToken(ctx context.Context, email string) (tok *domain.TwoFactorToken, err error) {
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(string(domain.KindTwoFactor), metrics.Result(err)).Inc()
	}()

	code, err := randomCode(g.entropy())
	if err != nil {
		return nil, fmt.Errorf("generate two factor code: %w", err)
	}
	now := g.now()
	tok = &domain.TwoFactorToken{
		ID:        uuid.New(),
		Email:     email,
		Token:     code,
		ExpiresAt: now.Add(domain.TwoFactorTokenTTL),
		CreatedAt: now,
	}
	if err = g.Store.TwoFactorTokens().Replace(ctx, tok); err != nil {
		return nil, fmt.Errorf("replace two factor token: %w", err)
	}
	slog.Debug("issued token", "kind", domain.KindTwoFactor, "token_id", tok.ID, "expires_at", tok.ExpiresAt)
	return tok, nil
}

func randomCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(twoFactorCodeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+twoFactorCodeMin, 10), nil
}
