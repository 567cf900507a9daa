package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Authorization attributes (role, company, stores) deliberately stay out
// of the token: they are re-read from the metadata store on every request
// so that provisioning changes apply without waiting for token expiry.
type AccessTokenPayload struct {
	Email string
	JTI   string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
