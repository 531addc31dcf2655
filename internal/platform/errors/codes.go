// Package errors provides structured error handling with localized user messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthNetworkFailure     Code = "AUTH_NETWORK_FAILURE"
	CodeAuthSessionExpired     Code = "AUTH_SESSION_EXPIRED"
	CodeAuthRefreshFailed      Code = "AUTH_REFRESH_FAILED"
	CodeAuthLogoutFailed       Code = "AUTH_LOGOUT_FAILED"
	CodeAuthCSRFTokenMissing   Code = "AUTH_CSRF_TOKEN_MISSING"

	// Backend response errors
	CodeBackendBadResponse Code = "BACKEND_BAD_RESPONSE"

	// Preference errors
	CodePrefsInvalidLocale Code = "PREFS_INVALID_LOCALE"
	CodePrefsInvalidTheme  Code = "PREFS_INVALID_THEME"
	CodePrefsUnknownKey    Code = "PREFS_UNKNOWN_KEY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Retryable reports whether the condition behind the code can clear on its
// own, so the refresh loop should keep re-attempting instead of forcing a
// new login.
func (c Code) Retryable() bool {
	switch c {
	case CodeAuthNetworkFailure, CodeAuthRefreshFailed:
		return true
	default:
		return false
	}
}
