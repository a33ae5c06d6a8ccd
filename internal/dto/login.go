package dto

import "bookingauth/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code,omitempty" validate:"omitempty,len=6,number"`
}

// LoginResponse never carries internal error detail; Message is derived from Outcome.
type LoginResponse struct {
	Outcome   domain.LoginOutcome `json:"outcome"`
	Message   string              `json:"message"`
	TwoFactor bool                `json:"twoFactor,omitempty"`
	Tokens    *TokenResponse      `json:"tokens,omitempty"`
}

func NewLoginResponse(o domain.LoginOutcome) *LoginResponse {
	return &LoginResponse{
		Outcome:   o,
		Message:   o.Message(),
		TwoFactor: o == domain.OutcomeTwoFactorRequired,
	}
}
