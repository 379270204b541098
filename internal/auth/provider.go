// Package auth issues and checks bearer tokens for API callers.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/google/uuid"
	"lukechampine.com/blake3"
)

// TokenType is the scheme clients send in the Authorization header
const TokenType = "bearer"

// Provider is the identity provider contract the API depends on
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*types.User, error)
	SignIn(ctx context.Context, email, password string) (*types.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*types.Principal, error)
	SignOut(ctx context.Context, token string) error
}

// Store is the persistence the local provider needs
type Store interface {
	InsertUser(ctx context.Context, user *types.User) error
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	UpsertProfile(ctx context.Context, profile *types.Profile) error
	InsertSession(ctx context.Context, session *types.Session) error
	GetSession(ctx context.Context, tokenHash string) (*types.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// LocalProvider keeps accounts in the metadata store. Tokens are random
// and only their BLAKE3 hash is persisted.
type LocalProvider struct {
	store      Store
	sessionTTL time.Duration
	now        func() time.Time
}

// NewLocalProvider creates a provider issuing tokens valid for sessionTTL
func NewLocalProvider(store Store, sessionTTL time.Duration) *LocalProvider {
	return &LocalProvider{store: store, sessionTTL: sessionTTL, now: time.Now}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashToken returns the hex BLAKE3-256 digest under which a token is stored
func HashToken(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func credentials(email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", types.Validationf("Email and password are required.")
	}
	return email, nil
}

// SignUp creates an account with a free plan profile
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*types.User, error) {
	email, err := credentials(email, password)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.store.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	if err := p.store.UpsertProfile(ctx, &types.Profile{UserID: user.ID, Plan: types.PlanFree}); err != nil {
		return nil, err
	}

	logger.Info("Created user %s", user.ID)
	return user, nil
}

// SignIn checks credentials and issues a new token
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*types.AuthResult, error) {
	email, err := credentials(email, password)
	if err != nil {
		return nil, err
	}

	user, err := p.store.GetUserByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.Authf("Invalid login credentials.")
	}
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, types.Authf("Invalid login credentials.")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	session := &types.Session{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: p.now().Add(p.sessionTTL).UTC(),
	}
	if err := p.store.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	return &types.AuthResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   session.ExpiresAt,
		User:        user,
	}, nil
}

// Authenticate resolves a token to its principal
func (p *LocalProvider) Authenticate(ctx context.Context, token string) (*types.Principal, error) {
	if token == "" {
		return nil, types.Authf("No token provided. Authorization denied.")
	}

	session, err := p.store.GetSession(ctx, HashToken(token))
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.Authf("Invalid or expired token.")
	}
	if err != nil {
		return nil, err
	}

	if !p.now().Before(session.ExpiresAt) {
		if err := p.store.DeleteSession(ctx, session.TokenHash); err != nil {
			logger.Warn("Failed to drop expired session: %v", err)
		}
		return nil, types.Authf("Invalid or expired token.")
	}

	user, err := p.store.GetUserByID(ctx, session.UserID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.Authf("Invalid or expired token.")
	}
	if err != nil {
		return nil, err
	}

	return &types.Principal{UserID: user.ID, Email: user.Email}, nil
}

// SignOut revokes token
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	return p.store.DeleteSession(ctx, HashToken(token))
}
