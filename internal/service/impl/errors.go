package impl

import "errors"

var (
	ErrEmptyPassword = errors.New("empty password")
	ErrInvalidFields = errors.New("invalid fields")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNilStore      = errors.New("nil store")
)
