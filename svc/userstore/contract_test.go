package userstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/svc/userstore"
)

// runStoreContract exercises the auth.Store contract against a fresh store per subtest.
func runStoreContract(t *testing.T, newStore func(t *testing.T) auth.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save assigns id and defaults", func(t *testing.T) {
		s := newStore(t)
		saved, err := s.Save(ctx, &auth.User{Username: "alice", Email: "Alice@Example.com"})
		require.NoError(t, err)

		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "alice@example.com", saved.Email)
		assert.Equal(t, []string{auth.RoleUser}, saved.Roles)
		assert.True(t, saved.Enabled)
		assert.False(t, saved.CreatedAt.IsZero())
		assert.False(t, saved.UpdatedAt.IsZero())
	})

	t.Run("lookups", func(t *testing.T) {
		s := newStore(t)
		saved, err := s.Save(ctx, &auth.User{
			Username:   "bob",
			Email:      "bob@example.com",
			Provider:   auth.ProviderGoogle,
			ProviderID: "g-1",
		})
		require.NoError(t, err)

		u, err := s.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, u.ID)

		u, err = s.FindByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, u.ID)

		u, err = s.FindByProvider(ctx, auth.ProviderGoogle, "g-1")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, u.ID)

		ok, err := s.ExistsByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("misses", func(t *testing.T) {
		s := newStore(t)

		_, err := s.FindByUsername(ctx, "ghost")
		require.ErrorIs(t, err, auth.ErrUserNotFound)
		_, err = s.FindByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, auth.ErrUserNotFound)
		_, err = s.FindByProvider(ctx, auth.ProviderGitHub, "42")
		require.ErrorIs(t, err, auth.ErrUserNotFound)
		_, err = s.FindByProvider(ctx, auth.ProviderGitHub, "")
		require.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("replace keeps created at", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Save(ctx, &auth.User{Username: "carol", Email: "carol@example.com"})
		require.NoError(t, err)

		first.DisplayName = "Carol"
		second, err := s.Save(ctx, first)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Carol", second.DisplayName)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

		u, err := s.FindByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, "Carol", u.DisplayName)
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, &auth.User{Username: "dave", Email: "dave@example.com"})
		require.NoError(t, err)

		_, err = s.Save(ctx, &auth.User{Username: "dave", Email: "other@example.com"})
		require.ErrorIs(t, err, auth.ErrUniqueViolation)
		require.ErrorIs(t, err, auth.ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, &auth.User{Username: "erin", Email: "erin@example.com"})
		require.NoError(t, err)

		_, err = s.Save(ctx, &auth.User{Username: "erin2", Email: "ERIN@example.com"})
		require.ErrorIs(t, err, auth.ErrUniqueViolation)
		require.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("duplicate provider identity", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, &auth.User{Username: "f1", Email: "f1@example.com", Provider: "github", ProviderID: "7"})
		require.NoError(t, err)

		_, err = s.Save(ctx, &auth.User{Username: "f2", Email: "f2@example.com", Provider: "github", ProviderID: "7"})
		require.ErrorIs(t, err, auth.ErrUniqueViolation)
		require.ErrorIs(t, err, userstore.ErrProviderLinked)
	})

	t.Run("accounts without username or provider coexist", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, &auth.User{Email: "g1@example.com"})
		require.NoError(t, err)
		_, err = s.Save(ctx, &auth.User{Email: "g2@example.com"})
		require.NoError(t, err)
	})

	t.Run("concurrent inserts with the same email", func(t *testing.T) {
		s := newStore(t)

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = s.Save(ctx, &auth.User{Email: "race@example.com"})
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, auth.ErrEmailTaken)
		}
		assert.Equal(t, 1, succeeded)
	})
}
