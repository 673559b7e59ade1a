package db

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/school-words/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.db")
	store, err := Open(context.Background(), "", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newUser(username string, grade int) *models.User {
	return &models.User{
		FirstName:    "Ana",
		LastName:     "Pérez",
		Username:     username,
		PasswordHash: []byte("$2a$10$hash"),
		Grade:        grade,
	}
}

func TestSQLite_UserLifecycle(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	assert.Equal(t, SQLite, store.Dialect())

	u := newUser("ana", 4)
	require.NoError(t, store.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	exists, err := store.UsernameExists(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, exists)

	err = store.CreateUser(ctx, newUser("ana", 2))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, 4, got.Grade)
	assert.False(t, got.IsActive)
	assert.Equal(t, []byte("$2a$10$hash"), got.PasswordHash)

	pending, err := store.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	for i := 0; i < 2; i++ {
		got, err = store.SetUserActive(ctx, "ana", true)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	}

	pending, err = store.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = store.SetUserActive(ctx, "ghost", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_GradeConstraint(t *testing.T) {
	store := openSQLite(t)
	err := store.CreateUser(context.Background(), newUser("eve", 9))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestSQLite_ConcurrentSignupSameUsername(t *testing.T) {
	store := openSQLite(t)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, conf int
		other    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.CreateUser(context.Background(), newUser("race", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrUsernameTaken):
				conf++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conf)
}

func TestSQLite_Sessions(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	u := newUser("ana", 1)
	require.NoError(t, store.CreateUser(ctx, u))

	now := time.Unix(1700000000, 0).UTC()
	live := models.Session{ID: "live", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := models.Session{ID: "stale", UserID: u.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, store.CreateSession(ctx, live))
	require.NoError(t, store.CreateSession(ctx, stale))

	got, err := store.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, live.ExpiresAt, got.ExpiresAt)

	n, err := store.DeleteExpiredSessions(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteSession(ctx, "live"))
	require.NoError(t, store.DeleteSession(ctx, "live"))
	_, err = store.GetSession(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)
}
