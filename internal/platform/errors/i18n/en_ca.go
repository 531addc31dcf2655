package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                = "UNKNOWN"
	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthNetworkFailure     = "AUTH_NETWORK_FAILURE"
	CodeAuthSessionExpired     = "AUTH_SESSION_EXPIRED"
	CodeAuthRefreshFailed      = "AUTH_REFRESH_FAILED"
	CodeAuthLogoutFailed       = "AUTH_LOGOUT_FAILED"
	CodeAuthCSRFTokenMissing   = "AUTH_CSRF_TOKEN_MISSING"
	CodeBackendBadResponse     = "BACKEND_BAD_RESPONSE"
	CodePrefsInvalidLocale     = "PREFS_INVALID_LOCALE"
	CodePrefsInvalidTheme      = "PREFS_INVALID_THEME"
	CodePrefsUnknownKey        = "PREFS_UNKNOWN_KEY"
	CodeNotFound               = "NOT_FOUND"
)

var messagesEnCA = map[Code]string{
	CodeUnknown:                "Something went wrong. Please try again.",
	CodeAuthInvalidCredentials: "Invalid credentials",
	CodeAuthNetworkFailure:     "Network error, check your connection",
	CodeAuthSessionExpired:     "Session expired, please login again",
	CodeAuthRefreshFailed:      "Authentication failed, please try again",
	CodeAuthLogoutFailed:       "Logout failed, your local session was cleared",
	CodeAuthCSRFTokenMissing:   "Could not start a secure login, please try again",
	CodeBackendBadResponse:     "The server returned an unexpected response",
	CodePrefsInvalidLocale:     "Unsupported language {{.locale}}",
	CodePrefsInvalidTheme:      "Unsupported theme {{.theme}}",
	CodePrefsUnknownKey:        "Unknown preference {{.key}}",
	CodeNotFound:               "Not found",
}
