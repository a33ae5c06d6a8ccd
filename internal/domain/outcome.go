package domain

// LoginOutcome is the closed set of results a login attempt can produce.
type LoginOutcome string

const (
	OutcomeInvalidFields         LoginOutcome = "invalid_fields"
	OutcomeAccountNotFound       LoginOutcome = "account_not_found"
	OutcomeConfirmationEmailSent LoginOutcome = "confirmation_email_sent"
	OutcomeTwoFactorRequired     LoginOutcome = "two_factor_required"
	OutcomeInvalidCode           LoginOutcome = "invalid_code"
	OutcomeCodeExpired           LoginOutcome = "code_expired"
	OutcomeLoginSuccessful       LoginOutcome = "login_successful"
	OutcomeInvalidCredentials    LoginOutcome = "invalid_credentials"
	OutcomeUnknownError          LoginOutcome = "unknown_error"
)

// AccountNotFound and InvalidCredentials share a message so a caller cannot
// tell a missing account from a wrong password.
const credentialsMessage = "Invalid credentials!"

var outcomeMessages = map[LoginOutcome]string{
	OutcomeInvalidFields:         "Invalid fields!",
	OutcomeAccountNotFound:       credentialsMessage,
	OutcomeConfirmationEmailSent: "Confirmation email sent!",
	OutcomeTwoFactorRequired:     "Two factor code sent!",
	OutcomeInvalidCode:           "Invalid code!",
	OutcomeCodeExpired:           "Code expired!",
	OutcomeLoginSuccessful:       "Logged in!",
	OutcomeInvalidCredentials:    credentialsMessage,
	OutcomeUnknownError:          "Something went wrong!",
}

// Message returns the human readable text shown for o.
func (o LoginOutcome) Message() string {
	if m, ok := outcomeMessages[o]; ok {
		return m
	}
	return outcomeMessages[OutcomeUnknownError]
}

// Success reports whether o ends the flow without an error for the caller.
func (o LoginOutcome) Success() bool {
	switch o {
	case OutcomeLoginSuccessful, OutcomeConfirmationEmailSent, OutcomeTwoFactorRequired:
		return true
	}
	return false
}
