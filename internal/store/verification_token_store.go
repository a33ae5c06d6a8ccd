package store

import (
	"context"

	"bookingauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationTokenStore struct{ db *gorm.DB }

func (s *Store) VerificationTokens() *VerificationTokenStore {
	return &VerificationTokenStore{db: s.DB}
}

func (v *VerificationTokenStore) GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	if err := v.db.WithContext(ctx).First(&t, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (v *VerificationTokenStore) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	if err := v.db.WithContext(ctx).First(&t, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (v *VerificationTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	if err := v.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (v *VerificationTokenStore) Create(ctx context.Context, t *domain.VerificationToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(v.db.WithContext(ctx).Create(t).Error)
}

func (v *VerificationTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(v.db.WithContext(ctx).Delete(&domain.VerificationToken{}, "id = ?", id).Error)
}

// Replace drops any token issued for t.Email and stores t in its place.
func (v *VerificationTokenStore) Replace(ctx context.Context, t *domain.VerificationToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return replace(v.db.WithContext(ctx), &domain.VerificationToken{}, "email", t.Email, t)
}
