package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the access token issued by the API on login.
type Token struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// tokenExpired peeks at the exp claim without verifying the signature; the
// API remains the authority. Opaque tokens are never treated as expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
