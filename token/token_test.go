package token_test

import (
	"testing"
	"time"

	"github.com/clipstream/authcore/token"
	"github.com/clipstream/authcore/users"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-1234"
	refreshSecret = "refresh-secret-5678"
	accessTTL     = 15 * time.Minute
	refreshTTL    = 7 * 24 * time.Hour
)

var testUser = &users.User{
	ID:       "user-1",
	Handle:   "jane",
	Email:    "jane@example.com",
	FullName: "Jane Doe",
}

func newPair(now time.Time) (*token.Issuer, *token.Verifier) {
	nowFunc := func() time.Time { return now }
	issuer := token.NewIssuer(accessSecret, refreshSecret, accessTTL, refreshTTL, token.WithIssuerNowFunc(nowFunc))
	verifier := token.NewVerifier(accessSecret, refreshSecret, token.WithVerifierNowFunc(nowFunc))
	return issuer, verifier
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now()
	issuer, verifier := newPair(now)

	raw, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)

	claims, err := verifier.VerifyAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "jane", claims.Handle)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "Jane Doe", claims.FullName)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(accessTTL), claims.ExpiresAt.Time, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	now := time.Now()
	issuer, verifier := newPair(now)

	raw, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := verifier.VerifyRefreshToken(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.WithinDuration(t, now.Add(refreshTTL), claims.ExpiresAt.Time, time.Second)
}

func TestExpiredTokensRejected(t *testing.T) {
	now := time.Now()
	issuer, _ := newPair(now)

	accessRaw, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)
	refreshRaw, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)

	// Verify from a point past both lifetimes.
	later := now.Add(refreshTTL + time.Minute)
	verifier := token.NewVerifier(accessSecret, refreshSecret, token.WithVerifierNowFunc(func() time.Time { return later }))

	_, err = verifier.VerifyAccessToken(accessRaw)
	require.ErrorIs(t, err, token.ErrTokenExpired)
	_, err = verifier.VerifyRefreshToken(refreshRaw)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	now := time.Now()
	issuer, _ := newPair(now)

	raw, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)

	verifier := token.NewVerifier("some-other-secret", refreshSecret, token.WithVerifierNowFunc(func() time.Time { return now }))
	_, err = verifier.VerifyAccessToken(raw)
	require.ErrorIs(t, err, token.ErrTokenSignature)
}

func TestTokenClassesNotInterchangeable(t *testing.T) {
	now := time.Now()
	issuer, verifier := newPair(now)

	accessRaw, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)
	refreshRaw, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)

	// Each class only verifies under its own secret.
	_, err = verifier.VerifyRefreshToken(accessRaw)
	require.ErrorIs(t, err, token.ErrTokenSignature)
	_, err = verifier.VerifyAccessToken(refreshRaw)
	require.ErrorIs(t, err, token.ErrTokenSignature)
}

func TestMalformedTokenRejected(t *testing.T) {
	_, verifier := newPair(time.Now())

	_, err := verifier.VerifyAccessToken("not.a.jwt")
	require.ErrorIs(t, err, token.ErrTokenMalformed)
	_, err = verifier.VerifyAccessToken("")
	require.ErrorIs(t, err, token.ErrTokenMalformed)
}
