package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.Username]; ok {
		return apperrors.ErrConflict
	}
	user.ID = uuid.New()
	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), zap.NewNop())

	user, err := svc.Register(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("expected password hashed")
	}

	authed, err := svc.Authenticate(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Error("expected same user back")
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), zap.NewNop())

	if _, err := svc.Register(context.Background(), "alice", "short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), zap.NewNop())

	if _, err := svc.Register(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice", "password456")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, zap.NewNop())
	if _, err := svc.Register(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, badUser := svc.Authenticate(context.Background(), "nobody", "password123")
	_, badPass := svc.Authenticate(context.Background(), "alice", "wrongpass")

	if !errors.Is(badUser, apperrors.ErrUnauthorized) || !errors.Is(badPass, apperrors.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for both, got %v / %v", badUser, badPass)
	}
	if badUser.Error() != badPass.Error() {
		t.Error("expected identical failure for unknown user and wrong password")
	}
}
