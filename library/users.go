package library

import (
	"database/sql"
	"errors"
)

func (d *Database) InsertUser(u User) error {
	_, err := d.db.Exec(
		`INSERT INTO users (full_name, username, password, is_admin) VALUES (?, ?, ?, ?)`,
		u.FullName, u.Username, u.Password, u.IsAdmin)
	if err != nil {
		return storeErr("insert user", err)
	}
	return nil
}

// GetUserByCredentials fetches the user matching username and password hash,
// or ErrNotFound when the pair matches nothing.
func (d *Database) GetUserByCredentials(username, passwordHash string) (*User, error) {
	var u User
	err := d.db.Get(&u,
		`SELECT id, full_name, username, password, is_admin
         FROM users WHERE username = ? AND password = ?`, username, passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

func (d *Database) UsernameExists(username string) (bool, error) {
	var n int
	if err := d.db.Get(&n, `SELECT COUNT(*) FROM users WHERE username = ?`, username); err != nil {
		return false, storeErr("count username", err)
	}
	return n > 0, nil
}

// CountUsers reports how many accounts exist; the seeding guard uses it.
func (d *Database) CountUsers() (int, error) {
	var n int
	if err := d.db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}
