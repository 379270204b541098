package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// GetProfile returns the profile of userID, or NotFound when none was provisioned
func (db *DB) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	var plan string
	err := db.conn.QueryRowContext(ctx, `SELECT plan FROM profiles WHERE user_id = ?`, userID).Scan(&plan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("Profile not found.")
		}
		return nil, types.StoreError(fmt.Errorf("failed to get profile: %w", err))
	}
	return &types.Profile{UserID: userID, Plan: types.ParsePlan(plan)}, nil
}

// UpsertProfile creates or updates the plan of a user
func (db *DB) UpsertProfile(ctx context.Context, profile *types.Profile) error {
	query := `INSERT INTO profiles (user_id, plan) VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET plan = excluded.plan`
	if _, err := db.conn.ExecContext(ctx, query, profile.UserID, string(profile.Plan)); err != nil {
		return types.StoreError(fmt.Errorf("failed to upsert profile: %w", err))
	}
	return nil
}

// InsertUser creates an account. Email uniqueness is enforced by the schema.
func (db *DB) InsertUser(ctx context.Context, user *types.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return types.Conflictf("An account with this email already exists.")
		}
		return types.StoreError(fmt.Errorf("failed to insert user: %w", err))
	}
	return nil
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*types.User, error) {
	user := &types.User{}
	var createdAt int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE `+where+` = ?`, arg,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("User not found.")
		}
		return nil, types.StoreError(fmt.Errorf("failed to get user: %w", err))
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

// GetUserByEmail looks up an account by its (normalized) email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return db.getUser(ctx, "email", email)
}

// GetUserByID looks up an account by id
func (db *DB) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	return db.getUser(ctx, "id", id)
}

// InsertSession stores an issued token hash
func (db *DB) InsertSession(ctx context.Context, session *types.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		session.TokenHash, session.UserID, session.ExpiresAt.UnixNano())
	if err != nil {
		return types.StoreError(fmt.Errorf("failed to insert session: %w", err))
	}
	return nil
}

// GetSession returns the session for a token hash, or NotFound
func (db *DB) GetSession(ctx context.Context, tokenHash string) (*types.Session, error) {
	session := &types.Session{TokenHash: tokenHash}
	var expiresAt int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash = ?`, tokenHash,
	).Scan(&session.UserID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("Session not found.")
		}
		return nil, types.StoreError(fmt.Errorf("failed to get session: %w", err))
	}
	session.ExpiresAt = time.Unix(0, expiresAt).UTC()
	return session, nil
}

// DeleteSession revokes a token. Deleting an unknown token is not an error.
func (db *DB) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return types.StoreError(fmt.Errorf("failed to delete session: %w", err))
	}
	return nil
}

// DeleteExpiredSessions purges sessions that expired before now and returns
// how many were removed.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.UnixNano())
	if err != nil {
		return 0, types.StoreError(fmt.Errorf("failed to purge sessions: %w", err))
	}
	n, _ := result.RowsAffected()
	return n, nil
}
