package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// User mirrors the users table. Password carries the bcrypt hash and is never
// serialized.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findUser(ctx, "username = $1", username)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.findUser(ctx, "id = $1", id)
}

func (s *Store) findUser(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, password, role, COALESCE(full_name, ''), COALESCE(email, ''), created_at
    FROM users
    WHERE `+where+`
    LIMIT 1
  `, arg).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.FullName, &user.Email, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role, fullName, email string) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, password, role, full_name, email)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''))
    RETURNING id
  `, username, passwordHash, role, fullName, email).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID int64, fullName, email string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET full_name = COALESCE(NULLIF($1, ''), full_name),
        email = COALESCE(NULLIF($2, ''), email)
    WHERE id = $3
  `, fullName, email, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password = $1 WHERE id = $2", passwordHash, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CreateSession(ctx context.Context, userID int64, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID int64, tokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, tokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, userID int64, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
  `, userID, tokenHash)
	return err
}
