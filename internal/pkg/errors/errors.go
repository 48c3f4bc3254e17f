// Package errors holds the sentinel errors of the account lifecycle.
// Domain errors carry the exact message shown to the API caller.
package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Lifecycle errors, surfaced verbatim in the response body.
var (
	ErrVerifyNoAccount    = errors.New("No account found for confirmation.")
	ErrAlreadyConfirmed   = errors.New("The account has already been confirmed.")
	ErrInvalidEmailHash   = errors.New("Incorrect data to confirm the account.")
	ErrVerifyFailed       = errors.New("Account confirmation error.")
	ErrInvalidCredentials = errors.New("These credentials do not match our records.")
	ErrNotVerified        = errors.New("Account not verified.")
	ErrResetThrottled     = errors.New("The password reset has been requested previously.")
	ErrResetRequestFailed = errors.New("Error sending a link to create a new password.")
	ErrInvalidResetToken  = errors.New("Invalid reset token.")
	ErrResetFailed        = errors.New("Error setting a new password.")
)

var domainErrors = []error{
	ErrVerifyNoAccount,
	ErrAlreadyConfirmed,
	ErrInvalidEmailHash,
	ErrVerifyFailed,
	ErrInvalidCredentials,
	ErrNotVerified,
	ErrResetThrottled,
	ErrResetRequestFailed,
	ErrInvalidResetToken,
	ErrResetFailed,
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsDomain reports whether err is a business-rule rejection rather than an
// infrastructure failure. Handlers map these to 422 responses.
func IsDomain(err error) bool {
	for _, domain := range domainErrors {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
