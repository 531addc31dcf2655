package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry resolves the session expiry. The backend's token_expiration
// field wins; when it is absent the exp claim of the access token is used
// instead. The token is decoded without signature verification since the
// client only reads the timestamp, it never trusts the token's contents for
// authorization. Returns the zero time when neither source is usable.
func tokenExpiry(tokenExpiration int64, accessToken string) time.Time {
	if tokenExpiration > 0 {
		return time.Unix(tokenExpiration, 0)
	}
	if accessToken == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}
	return expiry.Time
}
