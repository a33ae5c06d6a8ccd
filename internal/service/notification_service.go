package service

import "context"

// NotificationService delivers verification links and two factor codes.
// Implementations must honour ctx deadlines and report delivery failures.
type NotificationService interface {
	SendVerification(ctx context.Context, to string, token string) error
	SendTwoFactorCode(ctx context.Context, to string, code string) error
}
