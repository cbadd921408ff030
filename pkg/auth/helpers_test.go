package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/password"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/svc/userstore"
)

func fastHasher() *password.Hasher {
	return password.New(password.WithCost(bcrypt.MinCost))
}

// seedLocal stores a password account and returns it.
func seedLocal(t *testing.T, store auth.Store, username, email, plaintext string, roles ...string) *auth.User {
	t.Helper()
	hash, err := fastHasher().Hash(plaintext)
	require.NoError(t, err)

	u, err := store.Save(context.Background(), &auth.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Provider:     auth.ProviderLocal,
	})
	require.NoError(t, err)
	return u
}

func newMemoryStore() *userstore.Memory {
	return userstore.NewMemory()
}
