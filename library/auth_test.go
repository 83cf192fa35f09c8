package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordDeterministic(t *testing.T) {
	// Known digests; stored-hash compatibility depends on these.
	assert.Equal(t,
		"240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
		HashPassword("admin123"))
	assert.Equal(t,
		"6518454a49ab2912238b510b2221f0fc1ce404986d3fb94bb34311ff6069d467",
		HashPassword("lib123"))
	assert.Len(t, HashPassword(""), 64)
}

func TestLogin(t *testing.T) {
	mgr := newManager(t)

	session, err := mgr.Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.User.Username)
	assert.True(t, session.User.IsAdmin)
	assert.NotZero(t, session.ID)
	assert.WithinDuration(t, time.Now(), session.StartedAt, time.Minute)

	// Each login opens a distinct session.
	second, err := mgr.Login("librarian", "lib123")
	require.NoError(t, err)
	assert.False(t, second.User.IsAdmin)
	assert.NotEqual(t, session.ID, second.ID)

	_, err = mgr.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = mgr.Login("nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	mgr := newManager(t)

	require.NoError(t, mgr.Register("New Staff", "newstaff", "pw123", "YDT-library-mgmt-code"))

	session, err := mgr.Login("newstaff", "pw123")
	require.NoError(t, err)
	assert.False(t, session.User.IsAdmin, "registered users are never admins")

	// Wrong secret code and duplicate username are rejected before any insert.
	err = mgr.Register("Other", "other", "pw", "wrong-code")
	assert.ErrorIs(t, err, ErrBadSecretCode)

	err = mgr.Register("Dup", "newstaff", "pw", "YDT-library-mgmt-code")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = mgr.Register("", "x", "pw", "YDT-library-mgmt-code")
	assert.ErrorIs(t, err, ErrInvalidInput)

	n, err := mgr.db.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
