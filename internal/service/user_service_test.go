package service

import (
	"context"
	"testing"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestUserCreateAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(context.Background(), CreateUserRequest{
		Username: "mnguema",
		Email:    "mnguema@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleComptable,
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleComptable, user.Role)

	token, err := env.users.Login(context.Background(), LoginRequest{
		Email:    "mnguema@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	_, err = env.users.Login(context.Background(), LoginRequest{
		Email:    "mnguema@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), CreateUserRequest{
		Username: "intrus",
		Email:    "intrus@example.com",
		Password: "whatever1",
		Role:     "superviseur",
	})
	require.Error(t, err)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), CreateUserRequest{
		Username: "premier",
		Email:    "compta@example.com",
		Password: "whatever1",
		Role:     model.RoleAgent,
	})
	require.NoError(t, err)

	_, err = env.users.Create(context.Background(), CreateUserRequest{
		Username: "second",
		Email:    "compta@example.com",
		Password: "whatever2",
		Role:     model.RoleAgent,
	})
	require.Error(t, err)
}
