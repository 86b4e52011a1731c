package sessions

import (
	"context"

	"github.com/clipstream/authcore/users"
	"github.com/pkg/errors"
)

var _ Store = (*RecordStore)(nil)

// RecordStore keeps the session slot on the user record itself, so a single
// user repository backs both credentials and sessions.
type RecordStore struct {
	repo users.UserRepo
}

func NewRecordStore(repo users.UserRepo) *RecordStore {
	return &RecordStore{repo: repo}
}

func (s *RecordStore) Get(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", ErrNoSession
		}
		return "", errors.Wrap(err, "[RecordStore.Get] GetByID")
	}
	if user.RefreshToken == "" {
		return "", ErrNoSession
	}
	return user.RefreshToken, nil
}

func (s *RecordStore) Set(ctx context.Context, userID, refreshToken string) error {
	if _, err := s.repo.Update(ctx, userID, users.Update{RefreshToken: &refreshToken}); err != nil {
		return errors.Wrap(err, "[RecordStore.Set] Update")
	}
	return nil
}

func (s *RecordStore) Clear(ctx context.Context, userID string) error {
	empty := ""
	if _, err := s.repo.Update(ctx, userID, users.Update{RefreshToken: &empty}); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "[RecordStore.Clear] Update")
	}
	return nil
}
