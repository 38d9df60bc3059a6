package admins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Seed(ctx, 1, "Admin@Spa.local ", "Spa Admin", "secret")
	require.NoError(t, err)
	require.Equal(t, "admin@spa.local", a.Email)
	require.NotEqual(t, "secret", a.PasswordHash)

	got, err := svc.Authenticate(ctx, "admin@spa.local", "secret")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.AID)
	require.Equal(t, "admin:1", got.Sub())

	_, err = svc.Authenticate(ctx, "admin@spa.local", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@spa.local", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	byAID, err := svc.GetByAID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Spa Admin", byAID.Name)
}

func TestSeedRequiresPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	_, err := svc.Seed(context.Background(), 1, "admin@spa.local", "x", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestReseedKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()
	first, err := svc.Seed(ctx, 1, "admin@spa.local", "x", "one")
	require.NoError(t, err)
	second, err := svc.Seed(ctx, 1, "admin@spa.local", "x", "two")
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, second.CreatedAt)

	_, err = svc.Authenticate(ctx, "admin@spa.local", "two")
	require.NoError(t, err)
}
