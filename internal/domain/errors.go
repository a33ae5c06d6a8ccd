package domain

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailInUse        = errors.New("email already in use")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrTwoFactorRequired = errors.New("two factor confirmation required")
)
