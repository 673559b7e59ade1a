package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupInput {
	return SignupInput{
		FirstName: " Ana ",
		LastName:  "Pérez",
		Username:  "  Ana.Perez ",
		Password:  "secret",
		Grade:     3,
	}
}

func TestSignup_PendingAccount(t *testing.T) {
	svc, store, notifier := newTestService(testConfig())

	res, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	assert.Equal(t, NextLoginPending, res.Next)
	assert.Equal(t, pendingMessage, res.Message)
	assert.Equal(t, "ana.perez", res.User.Username)
	assert.Equal(t, "Ana", res.User.FirstName)
	assert.False(t, res.User.IsActive)
	assert.False(t, res.User.IsGuest)
	assert.NotEqual(t, []byte("secret"), res.User.PasswordHash)
	assert.True(t, checkPassword(res.User.PasswordHash, "secret"))
	assert.Equal(t, []string{"ana.perez"}, notifier.users)

	stored, err := store.GetUserByUsername(context.Background(), "ana.perez")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestSignup_GuestIsActivated(t *testing.T) {
	svc, _, notifier := newTestService(testConfig())

	in := validSignup()
	in.IsGuest = true
	in.GuestCode = " GUEST-2024 "
	res, err := svc.Signup(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, NextLogin, res.Next)
	assert.Empty(t, res.Message)
	assert.True(t, res.User.IsActive)
	assert.True(t, res.User.IsGuest)
	assert.Empty(t, notifier.users)
}

func TestSignup_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SignupInput)
		want   error
	}{
		{"missing_first_name", func(in *SignupInput) { in.FirstName = "  " }, apperr.ErrInvalidFields},
		{"missing_password", func(in *SignupInput) { in.Password = "" }, apperr.ErrInvalidFields},
		{"username_too_long", func(in *SignupInput) { in.Username = strings.Repeat("a", 81) }, apperr.ErrInvalidFields},
		{"last_name_too_long", func(in *SignupInput) { in.LastName = strings.Repeat("ñ", 81) }, apperr.ErrInvalidFields},
		{"grade_zero", func(in *SignupInput) { in.Grade = 0 }, apperr.ErrInvalidFields},
		{"grade_eight", func(in *SignupInput) { in.Grade = 8 }, apperr.ErrInvalidFields},
		{"guest_wrong_code", func(in *SignupInput) { in.IsGuest = true; in.GuestCode = "nope" }, apperr.ErrInvalidGuestCode},
		{"guest_empty_code", func(in *SignupInput) { in.IsGuest = true }, apperr.ErrInvalidGuestCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newTestService(testConfig())
			in := validSignup()
			tc.mutate(&in)

			_, err := svc.Signup(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
			users, _ := store.ListUsers(context.Background(), false)
			assert.Empty(t, users)
		})
	}
}

func TestSignup_GuestCodeNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.GuestCode = ""
	svc, _, _ := newTestService(cfg)

	in := validSignup()
	in.IsGuest = true
	in.GuestCode = ""
	_, err := svc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrInvalidGuestCode)
}

func TestSignup_DuplicateIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Username = "ANA.PEREZ"
	_, err = svc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
}

func TestSignup_DuplicateBeatsGuestCodeCheck(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.IsGuest = true
	in.GuestCode = "wrong"
	_, err = svc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
}

func TestSignup_ConcurrentSameUsername(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, conf int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			in := validSignup()
			in.Username = name
			_, err := svc.Signup(context.Background(), in)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperr.ErrUsernameTaken):
				conf++
			}
		}([]string{"Twin", "twin"}[i])
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conf)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	t.Run("inactive_account_can_log_in", func(t *testing.T) {
		res, err := svc.Login(context.Background(), "ANA.PEREZ ", "secret")
		require.NoError(t, err)
		assert.False(t, res.User.IsActive)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, time.Hour, res.Session.ExpiresAt.Sub(res.Session.CreatedAt))
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ana.perez", "nope")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("unknown_user_same_error", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost", "secret")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	res, err := svc.Login(context.Background(), "ana.perez", "secret")
	require.NoError(t, err)

	u, sess, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana.perez", u.Username)
	assert.Equal(t, res.Session.ID, sess.ID)

	require.NoError(t, svc.Logout(context.Background(), sess.ID))
	_, _, err = svc.Authenticate(context.Background(), res.Token)
	assert.ErrorIs(t, err, apperr.ErrLoginRequired)
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	res, err := svc.Login(context.Background(), "ana.perez", "secret")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, _, err := svc.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, apperr.ErrLoginRequired)
	})

	t.Run("foreign_key", func(t *testing.T) {
		forged, err := IssueToken([]byte("other-secret"), res.Session)
		require.NoError(t, err)
		_, _, err = svc.Authenticate(context.Background(), forged)
		assert.ErrorIs(t, err, apperr.ErrLoginRequired)
	})

	t.Run("session_expired_server_side", func(t *testing.T) {
		later := res.Session.ExpiresAt.Add(time.Second)
		svc.now = func() time.Time { return later }
		defer func() { svc.now = time.Now }()
		_, _, err := svc.Authenticate(context.Background(), res.Token)
		assert.ErrorIs(t, err, apperr.ErrLoginRequired)
	})

	t.Run("user_mismatch", func(t *testing.T) {
		other := res.Session
		other.UserID = 999
		token, err := IssueToken([]byte("test-secret"), other)
		require.NoError(t, err)
		_, _, err = svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperr.ErrLoginRequired)
	})
}

func TestAdmin(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CheckAdminKey("wrong"), apperr.ErrUnauthorized)
	assert.NoError(t, svc.CheckAdminKey(" admin-key "))

	for i := 0; i < 2; i++ {
		u, err := svc.SetActive(context.Background(), "Ana.Perez", true)
		require.NoError(t, err)
		assert.True(t, u.IsActive)
	}

	_, err = svc.SetActive(context.Background(), "  ", true)
	assert.ErrorIs(t, err, apperr.ErrMissingUsername)

	_, err = svc.SetActive(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	pending, err := svc.ListUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSetActiveByID(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	res, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	u, err := svc.SetActiveByID(context.Background(), res.User.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "ana.perez", u.Username)
	assert.True(t, u.IsActive)

	_, err = svc.SetActiveByID(context.Background(), res.User.ID+100, true)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestAdmin_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.AdminKey = ""
	svc, _, _ := newTestService(cfg)

	assert.False(t, svc.AdminEnabled())
	assert.ErrorIs(t, svc.CheckAdminKey(""), apperr.ErrAdminDisabled)
	assert.ErrorIs(t, svc.CheckAdminKey("anything"), apperr.ErrAdminDisabled)
}
