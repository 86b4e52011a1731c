package sessions

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoSession is returned when the user has no active session slot.
	ErrNoSession = errors.New("no active session")

	// ErrTokenMismatch is returned by conditional operations when the stored
	// token is not the expected one.
	ErrTokenMismatch = errors.New("session token mismatch")
)

// Store holds at most one refresh token per user. Writing replaces whatever
// was there, so a login from a second device ends the first device's session.
type Store interface {
	// Get returns the refresh token currently held for the user, or
	// ErrNoSession.
	Get(ctx context.Context, userID string) (string, error)

	// Set replaces the user's session slot with the given token.
	Set(ctx context.Context, userID, refreshToken string) error

	// Clear empties the user's session slot. Clearing an empty slot is not an
	// error.
	Clear(ctx context.Context, userID string) error
}

// ConditionalStore is implemented by stores that can update the slot
// atomically against its current value, closing the race between concurrent
// refresh attempts with the same token.
type ConditionalStore interface {
	Store

	// CompareAndSwap replaces the slot with next only if it currently holds
	// expected. Returns ErrNoSession when the slot is empty and
	// ErrTokenMismatch when it holds something else.
	CompareAndSwap(ctx context.Context, userID, expected, next string) error

	// CompareAndClear empties the slot only if it currently holds expected.
	CompareAndClear(ctx context.Context, userID, expected string) error
}
