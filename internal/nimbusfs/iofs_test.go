package nimbusfs

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/Project-Sylos/Nimbus/internal/db"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, u *Session, name, content string, parent *string) *types.Node {
	t.Helper()
	node, err := u.Upload(context.Background(), Upload{
		Name:     name,
		MimeType: "text/plain",
		Data:     []byte(content),
		ParentID: parent,
	})
	require.NoError(t, err)
	return node
}

func TestFSView(t *testing.T) {
	forEachDriver(t, Options{}, func(t *testing.T, env *testEnv) {
		ctx := context.Background()
		alice := env.addUser(t, "alice@example.com", types.PlanFree)
		bob := env.addUser(t, "bob@example.com", types.PlanFree)

		docs, err := alice.CreateFolder(ctx, "docs", nil)
		require.NoError(t, err)
		drafts, err := alice.CreateFolder(ctx, "drafts", &docs.ID)
		require.NoError(t, err)
		put(t, alice, "readme.txt", "hello", nil)
		put(t, alice, "plan.txt", "the plan", &docs.ID)
		put(t, alice, "v1.txt", "first draft", &drafts.ID)

		gone := put(t, alice, "deleted.txt", "bye", nil)
		_, err = alice.Trash(ctx, gone.ID)
		require.NoError(t, err)
		put(t, bob, "bob.txt", "not yours", nil)

		fsys := alice.FS(ctx)
		require.NoError(t, fstest.TestFS(fsys, "readme.txt", "docs/plan.txt", "docs/drafts/v1.txt"))

		data, err := fs.ReadFile(fsys, "docs/drafts/v1.txt")
		require.NoError(t, err)
		assert.Equal(t, "first draft", string(data))

		var walked []string
		require.NoError(t, fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			walked = append(walked, path)
			return err
		}))
		assert.Equal(t, []string{".", "docs", "docs/drafts", "docs/drafts/v1.txt", "docs/plan.txt", "readme.txt"}, walked)

		for _, name := range []string{"deleted.txt", "bob.txt", "docs/missing", "readme.txt/child"} {
			_, err := fs.Stat(fsys, name)
			assert.True(t, errors.Is(err, fs.ErrNotExist), name)
		}

		_, err = fsys.Open("../escape")
		assert.True(t, errors.Is(err, fs.ErrInvalid))
	})
}

func TestFSViewShadowsDuplicateNames(t *testing.T) {
	env := newTestEnv(t, db.DriverSQLite, Options{})
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com", types.PlanFree)

	first := put(t, alice, "notes.txt", "first", nil)
	put(t, alice, "notes.txt", "second", nil)
	_, err := alice.CreateFolder(ctx, "a/b", nil)
	require.NoError(t, err)

	fsys := alice.FS(ctx)
	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, first.ID, info.Sys().(*types.Node).ID)

	data, err := fs.ReadFile(fsys, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}
