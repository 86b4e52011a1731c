package users

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by UserRepo lookups when no record matches.
var ErrNotFound = errors.New("user not found")

// Update carries a partial record update. Nil pointers leave the field
// unchanged; pointers to zero values clear it.
type Update struct {
	Email               *string
	FullName            *string
	AvatarURL           *string
	CoverURL            *string
	PasswordHash        *string
	RefreshToken        *string
	LastAuthenticatedAt *time.Time
}

// UserRepo stores credential records. The auth service reads and writes
// through it on every call and never caches records.
type UserRepo interface {
	// FindByHandleOrEmail returns the record bound to either value. An empty
	// handle or email matches nothing.
	FindByHandleOrEmail(ctx context.Context, handle, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, update Update) (*User, error)
}
