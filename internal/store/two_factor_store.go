package store

import (
	"context"

	"bookingauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TwoFactorTokenStore struct{ db *gorm.DB }

func (s *Store) TwoFactorTokens() *TwoFactorTokenStore { return &TwoFactorTokenStore{db: s.DB} }

func (f *TwoFactorTokenStore) GetByEmail(ctx context.Context, email string) (*domain.TwoFactorToken, error) {
	var t domain.TwoFactorToken
	if err := f.db.WithContext(ctx).First(&t, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (f *TwoFactorTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TwoFactorToken, error) {
	var t domain.TwoFactorToken
	if err := f.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (f *TwoFactorTokenStore) Create(ctx context.Context, t *domain.TwoFactorToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(f.db.WithContext(ctx).Create(t).Error)
}

func (f *TwoFactorTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(f.db.WithContext(ctx).Delete(&domain.TwoFactorToken{}, "id = ?", id).Error)
}

func (f *TwoFactorTokenStore) Replace(ctx context.Context, t *domain.TwoFactorToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return replace(f.db.WithContext(ctx), &domain.TwoFactorToken{}, "email", t.Email, t)
}

type TwoFactorConfirmationStore struct{ db *gorm.DB }

func (s *Store) TwoFactorConfirmations() *TwoFactorConfirmationStore {
	return &TwoFactorConfirmationStore{db: s.DB}
}

func (c *TwoFactorConfirmationStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error) {
	var out domain.TwoFactorConfirmation
	if err := c.db.WithContext(ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (c *TwoFactorConfirmationStore) Create(ctx context.Context, conf *domain.TwoFactorConfirmation) error {
	if conf.ID == uuid.Nil {
		conf.ID = uuid.New()
	}
	return translate(c.db.WithContext(ctx).Create(conf).Error)
}

func (c *TwoFactorConfirmationStore) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(c.db.WithContext(ctx).Delete(&domain.TwoFactorConfirmation{}, "id = ?", id).Error)
}

func (c *TwoFactorConfirmationStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return translate(c.db.WithContext(ctx).Delete(&domain.TwoFactorConfirmation{}, "user_id = ?", userID).Error)
}

// Replace resets the confirmation for conf.UserID: the old row goes, conf is stored.
func (c *TwoFactorConfirmationStore) Replace(ctx context.Context, conf *domain.TwoFactorConfirmation) error {
	if conf.ID == uuid.Nil {
		conf.ID = uuid.New()
	}
	return replace(c.db.WithContext(ctx), &domain.TwoFactorConfirmation{}, "user_id", conf.UserID, conf)
}
