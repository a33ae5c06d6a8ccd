package store

import (
	"context"
	"time"

	"bookingauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStore struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.DB} }

func (a *AccountStore) Create(ctx context.Context, acc *domain.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	return translate(a.db.WithContext(ctx).Create(acc).Error)
}

func (a *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

// MarkEmailVerified stamps the verification time and records the address the
// token was issued for.
func (a *AccountStore) MarkEmailVerified(ctx context.Context, id uuid.UUID, email string, at time.Time) error {
	return translate(a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"email_verified": at,
			"email":          email,
			"updated_at":     at,
		}).Error)
}

func (a *AccountStore) SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return translate(a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Update("is_two_factor_enabled", enabled).Error)
}
