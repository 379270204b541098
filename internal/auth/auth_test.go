package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/db"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	argonTime, argonMemory, argonThreads = 1, 1024, 1
	os.Exit(m.Run())
}

func newTestProvider(t *testing.T) (*LocalProvider, *db.DB) {
	t.Helper()
	store, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewLocalProvider(store, time.Hour), store
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	other, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")

	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("hunter3", hash))
	assert.False(t, VerifyPassword("hunter2", "not-hex"))
	assert.False(t, VerifyPassword("hunter2", "abcd"))
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "ok", email: " Alice@Example.com ", password: "pw"},
		{name: "duplicate email", email: "alice@example.com", password: "pw", wantErr: types.ErrConflict},
		{name: "missing email", email: "", password: "pw", wantErr: types.ErrValidation},
		{name: "missing password", email: "bob@example.com", password: "", wantErr: types.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := p.SignUp(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", user.Email)

			profile, err := store.GetProfile(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, types.PlanFree, profile.Plan)
		})
	}
}

func TestSignInAuthenticateSignOut(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	user, err := p.SignUp(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, types.ErrAuth)
	_, err = p.SignIn(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, types.ErrAuth)

	result, err := p.SignIn(ctx, "ALICE@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, TokenType, result.TokenType)
	assert.Len(t, result.AccessToken, 64)
	assert.Equal(t, user.ID, result.User.ID)

	principal, err := p.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "alice@example.com", principal.Email)

	_, err = p.Authenticate(ctx, "")
	assert.ErrorIs(t, err, types.ErrAuth)
	_, err = p.Authenticate(ctx, "forged")
	assert.ErrorIs(t, err, types.ErrAuth)

	require.NoError(t, p.SignOut(ctx, result.AccessToken))
	_, err = p.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, types.ErrAuth)
}

func TestAuthenticateExpired(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)

	_, err := p.SignUp(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	result, err := p.SignIn(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, types.ErrAuth)

	_, err = store.GetSession(ctx, HashToken(result.AccessToken))
	assert.ErrorIs(t, err, types.ErrNotFound, "expired sessions are dropped on use")
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &types.Principal{UserID: "u1"})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", p.UserID)
}
