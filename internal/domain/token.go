package domain

import "time"

const (
	VerificationTokenTTL = time.Hour
	TwoFactorTokenTTL    = 5 * time.Minute

	VerificationTokenPrefix = "verify_"
)

// VerificationToken proves control of Email. At most one exists per email.
type VerificationToken struct {
	ID        TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:ux_verification_tokens_email" db:"email"`
	Token     string    `gorm:"type:text;not null;uniqueIndex:ux_verification_tokens_token" db:"token"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (VerificationToken) TableName() string { return "verification_tokens" }

// Expired reports whether the token is no longer usable at now.
func (t *VerificationToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

// TwoFactorToken is a single-use six digit code sent to Email.
type TwoFactorToken struct {
	ID        TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:ux_two_factor_tokens_email" db:"email"`
	Token     string    `gorm:"type:text;not null" db:"token"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (TwoFactorToken) TableName() string { return "two_factor_tokens" }

func (t *TwoFactorToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

// TwoFactorConfirmation marks that the account passed its code challenge.
type TwoFactorConfirmation struct {
	ID        TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    UserID    `gorm:"type:uuid;not null;uniqueIndex:ux_two_factor_confirmations_user" db:"user_id"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (TwoFactorConfirmation) TableName() string { return "two_factor_confirmations" }
