package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-match/identity/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "identity.db"), store.Path())
}

func TestLoad_Empty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())

	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	session := domain.Session{
		UserID:      "u1",
		Email:       "a@ucla.edu",
		Role:        domain.RolePrincipalInvestigator,
		DisplayName: "Dr. Shahan",
	}

	require.NoError(t, store.Save(context.Background(), session))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session, *loaded)
}

func TestSave_ReplacesPreviousSession(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(context.Background(), domain.Session{
		UserID: "u1", Email: "a@ucla.edu", Role: domain.RoleStudent,
	}))
	require.NoError(t, store.Save(context.Background(), domain.Session{
		UserID: "u2", Email: "b@ucla.edu", Role: domain.RolePrincipalInvestigator,
	}))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u2", loaded.UserID)
	assert.Equal(t, domain.RolePrincipalInvestigator, loaded.Role)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), domain.Session{UserID: "u1"}))

	require.NoError(t, store.Clear(context.Background()))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestClear_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Clear(context.Background()))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), domain.Session{
		UserID: "u1", Email: "a@ucla.edu", Role: domain.RoleStudent, DisplayName: "Jane Doe",
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.UserID)
	assert.Equal(t, "Jane Doe", loaded.DisplayName)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs the migration pass again over an up-to-date schema.
	again, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
