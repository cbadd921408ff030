package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemoryStore()
	seedLocal(t, store, "alice", "alice@example.com", "wonderland", auth.RoleUser, auth.RoleAdmin)
	authn := auth.NewAuthenticator(store, fastHasher())

	t.Run("by email", func(t *testing.T) {
		t.Parallel()
		p, err := authn.Authenticate(ctx, "alice@example.com", "wonderland")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", p.Subject)
		assert.Equal(t, []string{auth.RoleUser, auth.RoleAdmin}, p.Roles)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(ctx, "  Alice@Example.COM ", "wonderland")
		require.NoError(t, err)
	})

	t.Run("by username", func(t *testing.T) {
		t.Parallel()
		u, err := authn.AuthenticateUser(ctx, "alice", "wonderland")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(ctx, "alice", "looking-glass")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(ctx, "mallory", "wonderland")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(ctx, "  ", "wonderland")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = authn.Authenticate(ctx, "alice", "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthenticator_RejectsAccountsWithoutUsablePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()

	_, err := store.Save(ctx, &auth.User{
		Username:   "oauthonly",
		Email:      "oauth@example.com",
		Provider:   auth.ProviderGoogle,
		ProviderID: "g-1",
	})
	require.NoError(t, err)

	disabled := seedLocal(t, store, "bob", "bob@example.com", "builder")
	disabled.Enabled = false
	_, err = store.Save(ctx, disabled)
	require.NoError(t, err)

	authn := auth.NewAuthenticator(store, fastHasher())

	_, err = authn.Authenticate(ctx, "oauth@example.com", "anything")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = authn.Authenticate(ctx, "bob", "builder")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticator_StoreFailuresPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	outage := auth.StoreUnavailable("find", context.DeadlineExceeded)

	t.Run("email lookup", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, outage)

		_, err := auth.NewAuthenticator(store, fastHasher()).Authenticate(ctx, "alice@example.com", "pw")
		require.ErrorIs(t, err, auth.ErrStoreUnavailable)
		require.NotErrorIs(t, err, auth.ErrInvalidCredentials)
		store.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
	})

	t.Run("username lookup", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("FindByEmail", mock.Anything, "alice").Return(nil, auth.ErrUserNotFound)
		store.On("FindByUsername", mock.Anything, "alice").Return(nil, outage)

		_, err := auth.NewAuthenticator(store, fastHasher()).Authenticate(ctx, "alice", "pw")
		require.ErrorIs(t, err, auth.ErrStoreUnavailable)
		store.AssertExpectations(t)
	})
}

func TestAuthenticator_EmailTakesPrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()

	// One account's username equals another account's email.
	seedLocal(t, store, "carol@example.com", "carol.legacy@example.com", "legacy-pass")
	seedLocal(t, store, "carol", "carol@example.com", "email-pass")

	authn := auth.NewAuthenticator(store, fastHasher())
	u, err := authn.AuthenticateUser(ctx, "carol@example.com", "email-pass")
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)

	_, err = authn.AuthenticateUser(ctx, "carol@example.com", "legacy-pass")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
