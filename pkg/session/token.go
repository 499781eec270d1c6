package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether an access token's exp claim is already in the
// past. The signature is not verified — the server remains the authority —
// this only short-circuits validation calls that cannot possibly succeed.
// Tokens that do not parse as JWTs, or carry no exp claim, report false so
// the server decides.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
