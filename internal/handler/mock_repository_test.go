package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shivanshkc/oauth2client/internal/repository"
)

// mockRepository is a mock implementation of repository.Repository.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindUserByIdentifier(ctx context.Context, identifier string) (*repository.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*repository.User)
	return user, args.Error(1)
}

func (m *mockRepository) UpdateUser(ctx context.Context, user *repository.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepository) SetPreference(ctx context.Context, userID int64, key, value string) error {
	args := m.Called(ctx, userID, key, value)
	return args.Error(0)
}

func (m *mockRepository) AddAuthLog(ctx context.Context, entry repository.AuthLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
