package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Deeekaaay/EventManagement/internal/model"
	"github.com/Deeekaaay/EventManagement/internal/utils"
)

// UserRepo is the user directory: account creation, credential lookup
// and password changes.  Password verification itself happens in the
// handler with utils.VerifyPassword against the stored hash.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new account with a bcrypt-hashed password and returns
// its id.  Usernames are case-insensitive unique; ErrUsernameExists is
// returned on collision.
func (r *UserRepo) Create(ctx context.Context, username, password, preferredName, role string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, preferred_name, role) VALUES (?, ?, ?, ?)`,
		username, hash, preferredName, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an account by normalized username.  ErrNotFound
// is returned for unknown usernames.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, preferred_name, role, created_at FROM users WHERE username = ? LIMIT 1`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PreferredName, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, preferred_name, role, created_at FROM users WHERE user_id = ? LIMIT 1`,
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PreferredName, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// ChangePassword replaces the stored hash for the account.
func (r *UserRepo) ChangePassword(ctx context.Context, userID uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE user_id = ?`, hash, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
