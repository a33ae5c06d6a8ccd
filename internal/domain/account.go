package domain

import "time"

// Account is the identity record a login resolves to. A nil EmailVerified
// means the address has not been confirmed yet.
type Account struct {
	ID                 UserID     `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name               string     `gorm:"type:text" db:"name" json:"name"`
	Email              string     `gorm:"type:text;uniqueIndex:ux_users_email" db:"email" json:"email"`
	EmailVerified      *time.Time `db:"email_verified" json:"emailVerified"`
	IsTwoFactorEnabled bool       `gorm:"not null;default:false" db:"is_two_factor_enabled" json:"isTwoFactorEnabled"`
	CreatedAt          time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Account) TableName() string { return "users" }

func (a *Account) IsEmailVerified() bool { return a.EmailVerified != nil }
