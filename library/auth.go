package library

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// HashPassword digests the raw password with SHA-256 and returns lowercase
// hex. Unsalted, for compatibility with the hashes already in the store; a
// known weakness of this scheme, kept as documented legacy behavior.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Session is the per-login application context. It is created at login,
// handed to whatever needs the current user, and discarded at logout; nothing
// about it is global or persisted.
type Session struct {
	ID        uuid.UUID
	User      User
	StartedAt time.Time
}

// Login verifies credentials and opens a session.
func (lm *LibraryManager) Login(username, password string) (*Session, error) {
	u, err := lm.db.GetUserByCredentials(username, HashPassword(password))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	s := &Session{ID: uuid.New(), User: *u, StartedAt: time.Now()}
	lm.log.Info().Str("username", u.Username).Bool("admin", u.IsAdmin).
		Str("session", s.ID.String()).Msg("login")
	return s, nil
}

// Register creates a non-admin staff account. The secret code and username
// uniqueness are checked before any insert; both failures are domain errors.
func (lm *LibraryManager) Register(fullName, username, password, secretCode string) error {
	if fullName == "" || username == "" || password == "" {
		return ErrInvalidInput
	}
	if secretCode != lm.secretCode {
		return ErrBadSecretCode
	}

	taken, err := lm.db.UsernameExists(username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	return lm.db.InsertUser(User{
		FullName: fullName,
		Username: username,
		Password: HashPassword(password),
	})
}
