package impl

import (
	"context"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/store"

	"github.com/google/uuid"
)

// tokenRepository is the slice of the store the login core writes through.
// Tests substitute an in-memory implementation.
type tokenRepository interface {
	WithTx(ctx context.Context, fn func(tx tokenRepository) error) error
	Accounts() accountStore
	Credentials() credentialStore
	VerificationTokens() verificationTokenStore
	TwoFactorTokens() twoFactorTokenStore
	TwoFactorConfirmations() twoFactorConfirmationStore
}

type accountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID, email string, at time.Time) error
	SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

type credentialStore interface {
	UpsertPassword(ctx context.Context, c *domain.PasswordCredential) error
	GetPasswordByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error)
}

type verificationTokenStore interface {
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, t *domain.VerificationToken) error
}

type twoFactorTokenStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.TwoFactorToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, t *domain.TwoFactorToken) error
}

type twoFactorConfirmationStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	Replace(ctx context.Context, conf *domain.TwoFactorConfirmation) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx tokenRepository) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

func (g gormStoreAdapter) Accounts() accountStore { return g.store.Accounts() }

func (g gormStoreAdapter) Credentials() credentialStore { return g.store.Credentials() }

func (g gormStoreAdapter) VerificationTokens() verificationTokenStore {
	return g.store.VerificationTokens()
}

func (g gormStoreAdapter) TwoFactorTokens() twoFactorTokenStore { return g.store.TwoFactorTokens() }

func (g gormStoreAdapter) TwoFactorConfirmations() twoFactorConfirmationStore {
	return g.store.TwoFactorConfirmations()
}
