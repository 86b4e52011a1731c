package repofake

import (
	"context"
	"sync"

	"github.com/clipstream/authcore/users"
	"github.com/google/uuid"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is a mutex-guarded in-memory UserRepo for tests and local
// development.
type FakeUserRepo struct {
	records   map[string]*users.User
	handleIDs map[string]string // handle to user id
	emailIDs  map[string]string // email to user id
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		records:   make(map[string]*users.User),
		handleIDs: make(map[string]string),
		emailIDs:  make(map[string]string),
	}
}

func (ur *FakeUserRepo) FindByHandleOrEmail(ctx context.Context, handle, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if handle != "" {
		if id, ok := ur.handleIDs[handle]; ok {
			return copyOf(ur.records[id]), nil
		}
	}
	if email != "" {
		if id, ok := ur.emailIDs[email]; ok {
			return copyOf(ur.records[id]), nil
		}
	}
	return nil, users.ErrNotFound
}

func (ur *FakeUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	record := copyOf(user)
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	ur.records[record.ID] = record
	ur.handleIDs[record.Handle] = record.ID
	ur.emailIDs[record.Email] = record.ID
	return copyOf(record), nil
}

func (ur *FakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	record, ok := ur.records[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyOf(record), nil
}

func (ur *FakeUserRepo) Update(ctx context.Context, id string, update users.Update) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	record, ok := ur.records[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if update.Email != nil {
		delete(ur.emailIDs, record.Email)
		record.Email = *update.Email
		ur.emailIDs[record.Email] = id
	}
	if update.FullName != nil {
		record.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		record.AvatarURL = *update.AvatarURL
	}
	if update.CoverURL != nil {
		record.CoverURL = *update.CoverURL
	}
	if update.PasswordHash != nil {
		record.PasswordHash = *update.PasswordHash
	}
	if update.RefreshToken != nil {
		record.RefreshToken = *update.RefreshToken
	}
	if update.LastAuthenticatedAt != nil {
		record.LastAuthenticatedAt = *update.LastAuthenticatedAt
	}
	return copyOf(record), nil
}

// copyOf keeps callers from mutating the stored record through the returned
// pointer.
func copyOf(u *users.User) *users.User {
	c := *u
	return &c
}
