package sdk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Project-Sylos/Nimbus/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Logging.Output = "stderr"
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "nimbus.db")
	cfg.Blob.Badger = map[string]any{"in_memory": true}
	cfg.Blob.SigningSecret = "test-secret"
	return &cfg
}

func newTestNimbus(t *testing.T) *Nimbus {
	t.Helper()
	n, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		expectError string
	}{
		{
			name: "valid yaml config",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "nimbus.yaml")
				yaml := strings.Join([]string{
					"database:",
					"  driver: sqlite",
					"  path: " + filepath.ToSlash(filepath.Join(dir, "meta.db")),
					"blob:",
					"  type: badger",
					"  signing_secret: s3cret",
					"  badger:",
					"    in_memory: true",
				}, "\n")
				require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
				return path
			},
		},
		{
			name: "missing config file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			expectError: "config file not found",
		},
		{
			name: "unknown database driver",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "nimbus.yaml")
				require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: postgres\n"), 0644))
				return path
			},
			expectError: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.setup(t))
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			defer n.Close()
			assert.Equal(t, "sqlite", n.GetConfig().Database.Driver)
		})
	}
}

func TestNewWithConfigNil(t *testing.T) {
	_, err := NewWithConfig(nil)
	require.Error(t, err)
}

func TestNewWithConfigUnknownBlobStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Blob.Type = "gcs"
	_, err := NewWithConfig(cfg)
	require.Error(t, err)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	n := newTestNimbus(t)

	alice, err := n.Auth().SignUp(ctx, "Alice@Example.com", "wonderland")
	require.NoError(t, err)
	bob, err := n.Auth().SignUp(ctx, "bob@example.com", "builder")
	require.NoError(t, err)

	result, err := n.Auth().SignIn(ctx, "alice@example.com", "wonderland")
	require.NoError(t, err)
	principal, err := n.Auth().Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, principal.UserID)

	session := n.For(principal.UserID)
	folder, err := session.CreateFolder(ctx, "Reports", nil)
	require.NoError(t, err)

	file, err := session.Upload(ctx, Upload{
		Name:     "q1-report.txt",
		MimeType: "text/plain",
		Data:     []byte("quarterly numbers"),
		ParentID: &folder.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, NodeKindFile, file.Kind)

	usage, err := session.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len("quarterly numbers")), usage.TotalUsage)
	assert.Equal(t, PlanFree, usage.Plan)

	_, err = session.Share(ctx, file.ID, bob.Email)
	require.NoError(t, err)
	shared, err := n.For(bob.ID).SharedWithMe(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, file.ID, shared[0].ID)

	url, err := n.For(bob.ID).DownloadURL(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, n.GetConfig().API.PublicURL+"/blobs/"))

	data, mimeType, err := n.Blobs().Get(ctx, file.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(data))
	assert.Equal(t, "text/plain", mimeType)
}

func TestSetPlan(t *testing.T) {
	ctx := context.Background()
	n := newTestNimbus(t)

	user, err := n.Auth().SignUp(ctx, "carol@example.com", "pw")
	require.NoError(t, err)

	usage, err := n.For(user.ID).Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20<<20), usage.Limit)

	require.NoError(t, n.SetPlan(ctx, user.ID, PlanPro))

	usage, err = n.For(user.ID).Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, PlanPro, usage.Plan)
	assert.Equal(t, int64(200<<20), usage.Limit)
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	n := newTestNimbus(t)

	_, err := n.Auth().SignUp(ctx, "dave@example.com", "pw")
	require.NoError(t, err)
	_, err = n.Auth().SignIn(ctx, "dave@example.com", "pw")
	require.NoError(t, err)

	purged, err := n.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}

func TestNodeCount(t *testing.T) {
	ctx := context.Background()
	n := newTestNimbus(t)

	user, err := n.Auth().SignUp(ctx, "erin@example.com", "pw")
	require.NoError(t, err)
	session := n.For(user.ID)

	folder, err := session.CreateFolder(ctx, "Inbox", nil)
	require.NoError(t, err)
	_, err = session.CreateFolder(ctx, "Archive", nil)
	require.NoError(t, err)
	_, err = session.Trash(ctx, folder.ID)
	require.NoError(t, err)

	count, err := n.NodeCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
