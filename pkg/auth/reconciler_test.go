package auth_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

func TestReconciler_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := auth.NewReconciler(newMemoryStore())

	first, err := rec.Reconcile(ctx, auth.ProviderGoogle, "g-1", "dana@example.com", "Dana")
	require.NoError(t, err)
	second, err := rec.Reconcile(ctx, auth.ProviderGoogle, "g-1", "dana@example.com", "Dana")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestReconciler_LinksExistingAccountByEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	local := seedLocal(t, store, "a", "a@x.com", "password1")

	u, err := auth.NewReconciler(store).Reconcile(ctx, "google", "g1", "a@x.com", "A")
	require.NoError(t, err)

	assert.Equal(t, local.ID, u.ID)
	assert.Equal(t, "google", u.Provider)
	assert.Equal(t, "g1", u.ProviderID)
	assert.Equal(t, "A", u.DisplayName)
	assert.True(t, u.HasPassword(), "linking keeps the local password")

	linked, err := store.FindByProvider(ctx, "google", "g1")
	require.NoError(t, err)
	assert.Equal(t, local.ID, linked.ID)
}

func TestReconciler_LinkReplacesEarlierProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	rec := auth.NewReconciler(store)

	viaGitHub, err := rec.Reconcile(ctx, auth.ProviderGitHub, "42", "eve@example.com", "Eve")
	require.NoError(t, err)

	viaGoogle, err := rec.Reconcile(ctx, auth.ProviderGoogle, "g-9", "eve@example.com", "Eve")
	require.NoError(t, err)
	assert.Equal(t, viaGitHub.ID, viaGoogle.ID)
	assert.Equal(t, auth.ProviderGoogle, viaGoogle.Provider)

	_, err = store.FindByProvider(ctx, auth.ProviderGitHub, "42")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestReconciler_CreatesNewAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	u, err := auth.NewReconciler(newMemoryStore()).Reconcile(ctx, "google", "g2", "new@x.com", "New")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "new", u.Username)
	assert.Equal(t, []string{auth.RoleUser}, u.Roles)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, "google", u.Provider)
	assert.Equal(t, "g2", u.ProviderID)
	assert.Equal(t, "new@x.com", u.Email)
	assert.Equal(t, "New", u.DisplayName)
}

func TestReconciler_UsernameSuffix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	seedLocal(t, store, "frank", "frank@old.example.com", "password1")
	seedLocal(t, store, "frank1", "frank1@old.example.com", "password1")

	u, err := auth.NewReconciler(store).Reconcile(ctx, auth.ProviderGitHub, "7", "Frank@New.example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "frank2", u.Username)
}

func TestReconciler_UsernameNormalization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := auth.NewReconciler(newMemoryStore())

	u, err := rec.Reconcile(ctx, auth.ProviderGoogle, "g-3", "Grace.Hopper@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "grace.hopper", u.Username)
}

func TestReconciler_UsernameExhausted(t *testing.T) {
	t.Parallel()
	store := &MockStore{}
	store.On("FindByProvider", mock.Anything, "google", "g-1").Return(nil, auth.ErrUserNotFound)
	store.On("FindByEmail", mock.Anything, "hal@example.com").Return(nil, auth.ErrUserNotFound)
	store.On("ExistsByUsername", mock.Anything, mock.Anything).Return(true, nil)

	_, err := auth.NewReconciler(store, auth.WithMaxUsernameAttempts(3)).
		Reconcile(context.Background(), "google", "g-1", "hal@example.com", "")
	require.ErrorIs(t, err, auth.ErrUsernameExhausted)
	store.AssertNumberOfCalls(t, "ExistsByUsername", 3)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReconciler_RefreshesReturningUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	rec := auth.NewReconciler(store)

	first, err := rec.Reconcile(ctx, auth.ProviderGitHub, "99", "ivy@old.example.com", "Ivy")
	require.NoError(t, err)

	second, err := rec.Reconcile(ctx, auth.ProviderGitHub, "99", "ivy@new.example.com", "Ivy N.")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ivy@new.example.com", second.Email)
	assert.Equal(t, "Ivy N.", second.DisplayName)
	assert.Equal(t, first.Username, second.Username)
}

func TestReconciler_SkipsWriteWhenUnchanged(t *testing.T) {
	t.Parallel()
	existing := &auth.User{ID: "u-1", Email: "jo@example.com", DisplayName: "Jo", Roles: []string{"USER"}}
	store := &MockStore{}
	store.On("FindByProvider", mock.Anything, "google", "g-1").Return(existing, nil)

	u, err := auth.NewReconciler(store).Reconcile(context.Background(), "google", "g-1", "jo@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReconciler_MissingIdentity(t *testing.T) {
	t.Parallel()
	rec := auth.NewReconciler(&MockStore{})

	_, err := rec.Reconcile(context.Background(), "google", "g-1", "   ", "Nobody")
	require.ErrorIs(t, err, auth.ErrMissingEmail)

	_, err = rec.Reconcile(context.Background(), "google", "", "a@example.com", "Nobody")
	require.ErrorIs(t, err, auth.ErrMissingProviderID)
}

func TestReconciler_RetriesAfterUniqueViolation(t *testing.T) {
	t.Parallel()
	winner := &auth.User{ID: "winner", Email: "kim@example.com", Provider: "google", ProviderID: "g-5", Roles: []string{"USER"}}

	store := &MockStore{}
	store.On("FindByProvider", mock.Anything, "google", "g-5").Return(nil, auth.ErrUserNotFound).Once()
	store.On("FindByProvider", mock.Anything, "google", "g-5").Return(winner, nil).Once()
	store.On("FindByEmail", mock.Anything, "kim@example.com").Return(nil, auth.ErrUserNotFound).Once()
	store.On("ExistsByUsername", mock.Anything, "kim").Return(false, nil).Once()
	store.On("Save", mock.Anything, mock.AnythingOfType("*auth.User")).
		Return(nil, auth.UniqueViolation(auth.ErrEmailTaken)).Once()

	u, err := auth.NewReconciler(store).Reconcile(context.Background(), "google", "g-5", "kim@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "winner", u.ID)
	store.AssertExpectations(t)
}

func TestReconciler_RetriesOnlyOnce(t *testing.T) {
	t.Parallel()
	store := &MockStore{}
	store.On("FindByProvider", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrUserNotFound)
	store.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, auth.ErrUserNotFound)
	store.On("ExistsByUsername", mock.Anything, mock.Anything).Return(false, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil, auth.UniqueViolation(auth.ErrUsernameTaken))

	_, err := auth.NewReconciler(store).Reconcile(context.Background(), "google", "g-6", "lee@example.com", "")
	require.ErrorIs(t, err, auth.ErrUniqueViolation)
	store.AssertNumberOfCalls(t, "Save", 2)
}

func TestReconciler_StoreFailurePropagates(t *testing.T) {
	t.Parallel()
	store := &MockStore{}
	store.On("FindByProvider", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, auth.StoreUnavailable("find", fmt.Errorf("connection reset")))

	_, err := auth.NewReconciler(store).Reconcile(context.Background(), "google", "g-7", "max@example.com", "")
	require.ErrorIs(t, err, auth.ErrStoreUnavailable)
	store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
