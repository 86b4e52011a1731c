package token

import (
	"time"

	"github.com/clipstream/authcore/users"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Issuer mints signed, time-bounded tokens. It has no side effects beyond
// token construction - persisting refresh tokens is the caller's job.
type Issuer struct {
	accessSigner  Signer
	refreshSigner Signer
	accessTTL     time.Duration
	refreshTTL    time.Duration
	nowFunc       func() time.Time // injectable for testing
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithIssuerNowFunc sets the now time function (primarily for testing)
func WithIssuerNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

// NewIssuer creates an Issuer with a dedicated signer and lifetime per token
// class.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, options ...IssuerOption) *Issuer {
	i := &Issuer{
		accessSigner:  NewHMACSigner(accessSecret),
		refreshSigner: NewHMACSigner(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		nowFunc:       time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// IssueAccessToken mints an access token asserting the user's identity.
func (i *Issuer) IssueAccessToken(user *users.User) (string, error) {
	now := i.nowFunc()
	signed, err := i.accessSigner.Sign(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			ID:        uuid.New().String(),
		},
		Handle:   user.Handle,
		Email:    user.Email,
		FullName: user.FullName,
	})
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueAccessToken] Sign")
	}
	return signed, nil
}

// IssueRefreshToken mints a refresh token carrying only the user identity.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	now := i.nowFunc()
	signed, err := i.refreshSigner.Sign(RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
			ID:        uuid.New().String(),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueRefreshToken] Sign")
	}
	return signed, nil
}
