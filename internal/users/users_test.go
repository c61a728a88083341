package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"quizserver/internal/models"
	"quizserver/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	users map[int64]models.User
}

func newFakeStorage(users ...models.User) *fakeStorage {
	f := &fakeStorage{users: make(map[int64]models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}

	return f
}

func (f *fakeStorage) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (f *fakeStorage) UpdateUser(_ context.Context, user models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}

	for _, u := range f.users {
		if u.ID != user.ID && u.Email == user.Email {
			return storage.ErrUserExists
		}
	}

	f.users[user.ID] = user

	return nil
}

func newTestService(store *fakeStorage) *Service {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), store)
}

func TestProfile(t *testing.T) {
	store := newFakeStorage(models.User{ID: 1, Email: "a@x.com", Name: "A", Role: models.RoleUser})
	s := newTestService(store)

	user, err := s.Profile(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)

	_, err = s.Profile(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_NameOnly(t *testing.T) {
	store := newFakeStorage(models.User{ID: 1, Email: "a@x.com", Name: "A"})
	s := newTestService(store)

	user, err := s.UpdateProfile(context.Background(), "a@x.com", "", "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestUpdateProfile_BlankNameKept(t *testing.T) {
	store := newFakeStorage(models.User{ID: 1, Email: "a@x.com", Name: "A"})
	s := newTestService(store)

	user, err := s.UpdateProfile(context.Background(), "a@x.com", "", "   ")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)
}

func TestUpdateProfile_EmailChange(t *testing.T) {
	store := newFakeStorage(models.User{ID: 1, Email: "a@x.com", Name: "A"})
	s := newTestService(store)

	user, err := s.UpdateProfile(context.Background(), "a@x.com", "b@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", user.Email)

	// The old address no longer resolves.
	_, err = s.Profile(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	store := newFakeStorage(
		models.User{ID: 1, Email: "a@x.com", Name: "A"},
		models.User{ID: 2, Email: "b@x.com", Name: "B"},
	)
	s := newTestService(store)

	_, err := s.UpdateProfile(context.Background(), "a@x.com", "b@x.com", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile_SameEmailNoConflict(t *testing.T) {
	store := newFakeStorage(models.User{ID: 1, Email: "a@x.com", Name: "A"})
	s := newTestService(store)

	user, err := s.UpdateProfile(context.Background(), "a@x.com", "a@x.com", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	s := newTestService(newFakeStorage())

	_, err := s.UpdateProfile(context.Background(), "nobody@x.com", "", "X")
	assert.ErrorIs(t, err, ErrNotFound)
}
