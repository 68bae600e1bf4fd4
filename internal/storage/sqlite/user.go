package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/replayhq/scoreserver/internal/model"
)

const userColumns = `uid, username, nickname, email, password_hash, status, created_at, updated_at`

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, nickname, email, password_hash, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"), isUniqueViolation(err, "idx_users_username"):
			return model.ErrUsernameTaken
		case isUniqueViolation(err, "users.nickname"), isUniqueViolation(err, "idx_users_nickname"):
			return model.ErrNicknameTaken
		case isUniqueViolation(err, "users.email"), isUniqueViolation(err, "idx_users_email"):
			return model.ErrEmailTaken
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = model.UserID(id)
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, status = ?, updated_at = ?
		 WHERE uid = ?`,
		user.Email,
		user.PasswordHash,
		string(user.Status),
		user.UpdatedAt,
		int64(user.ID),
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") || isUniqueViolation(err, "idx_users_email") {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	if affected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = ?`, int64(id)))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE nickname = ?`, nickname))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, email))
}

func (s *Storage) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var status string
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Nickname,
		&u.Email,
		&u.PasswordHash,
		&status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}
	u.Status = model.UserStatus(status)
	return &u, nil
}
