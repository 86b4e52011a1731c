package token

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the identity assertion carried by a short-lived access
// token. It is verified statelessly - no store lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	Handle   string `json:"handle,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"name,omitempty"`
}

// RefreshClaims is carried by a long-lived refresh token. A valid signature
// is necessary but not sufficient: the token must also match the session
// store's slot for the subject.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
