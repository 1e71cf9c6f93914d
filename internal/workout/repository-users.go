package workout

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

// User is an account identified by an API key.
type User struct {
	ID       int       `json:"-"`
	PublicID string    `json:"userId"`
	Created  time.Time `json:"created"`
}

type sqliteUserRepository struct {
	baseRepository
}

func hashAPIKey(apiKey string) []byte {
	sum := sha256.Sum256([]byte(apiKey))
	return sum[:]
}

// Create inserts a user whose API key hashes to apiKey's SHA-256.
func (r *sqliteUserRepository) Create(ctx context.Context, publicID, apiKey string) (User, error) {
	var (
		user    User
		created string
	)
	err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO users (public_id, api_key_hash)
		VALUES (?, ?)
		RETURNING id, public_id, created`, publicID, hashAPIKey(apiKey)).
		Scan(&user.ID, &user.PublicID, &created)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	if user.Created, err = parseTimestamp(created); err != nil {
		return User{}, err
	}
	return user, nil
}

// ByAPIKey returns the user owning apiKey or [ErrNotFound].
func (r *sqliteUserRepository) ByAPIKey(ctx context.Context, apiKey string) (User, error) {
	var (
		user    User
		created string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, public_id, created
		FROM users
		WHERE api_key_hash = ?`, hashAPIKey(apiKey)).
		Scan(&user.ID, &user.PublicID, &created)
	if err != nil {
		return User{}, notFound(err, "query user by api key")
	}
	if user.Created, err = parseTimestamp(created); err != nil {
		return User{}, err
	}
	return user, nil
}

// Exists reports whether a user with id exists.
func (r *sqliteUserRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user exists: %w", err)
	}
	return exists, nil
}
