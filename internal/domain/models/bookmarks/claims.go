package bookmarks

import "github.com/golang-jwt/jwt/v5"

// Claims is the identity carried by a verified sign-in token. The email is
// the stable key users are registered under.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email"`
	EmailVerified        bool   `json:"email_verified"`
	Name                 string `json:"name"`
	Picture              string `json:"picture"`
}
