package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Rejection reasons are distinguished for observability only. Callers at the
// API boundary must collapse all of them to a single unauthorized outcome so
// verification internals do not leak.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Verifier validates signature, expiry, and claim shape of incoming tokens
// against the class-specific secrets.
type Verifier struct {
	accessSigner  Signer
	refreshSigner Signer
	nowFunc       func() time.Time // injectable for testing
}

// VerifierOption defines a function type to modify the Verifier instance.
type VerifierOption func(*Verifier)

// WithVerifierNowFunc sets the now time function (primarily for testing)
func WithVerifierNowFunc(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.nowFunc = now
	}
}

// NewVerifier creates a Verifier holding one verification key per token class.
func NewVerifier(accessSecret, refreshSecret string, options ...VerifierOption) *Verifier {
	v := &Verifier{
		accessSigner:  NewHMACSigner(accessSecret),
		refreshSigner: NewHMACSigner(refreshSecret),
		nowFunc:       time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// VerifyAccessToken checks an access token and returns its claims. Pure with
// respect to any store.
func (v *Verifier) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := v.parse(raw, claims, v.accessSigner); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// VerifyRefreshToken checks a refresh token's signature, expiry, and claim
// shape. The caller must still match it against the session store before
// trusting it.
func (v *Verifier) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := v.parse(raw, claims, v.refreshSigner); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (v *Verifier) parse(raw string, claims jwt.Claims, signer Signer) error {
	parser := jwt.NewParser(jwt.WithTimeFunc(v.nowFunc), jwt.WithExpirationRequired())
	parsed, err := parser.ParseWithClaims(raw, claims, signer.GetVerificationKey)
	switch {
	case err == nil && parsed.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
