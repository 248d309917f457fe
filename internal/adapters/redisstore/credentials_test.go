package redisstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/ports"
	"github.com/vitatrack/client-core/internal/testutil"
)

func TestCredentialStore_SetGetClear(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, "vitatrack:")
	ctx := context.Background()

	creds := session.Credentials{
		Token: "tok-1",
		User: session.UserSnapshot{
			ID: "u-1", Email: "jane@example.com", Role: session.RoleDoctor, IsDoctor: true,
		},
	}
	require.NoError(t, store.Set(ctx, creds))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestCredentialStore_EmptyStore(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, "vitatrack:")

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestCredentialStore_PrefixIsolation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	ctx := context.Background()

	a := NewCredentialStore(client, "a:")
	b := NewCredentialStore(client, "b:")

	require.NoError(t, a.Set(ctx, session.Credentials{Token: "tok-a", User: session.UserSnapshot{ID: "u", Email: "e"}}))
	_, err := b.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestCredentialStore_RejectsEmptyToken(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, "vitatrack:")

	err := store.Set(context.Background(), session.Credentials{})
	assert.Error(t, err)
}
