package blob

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(BadgerStoreConfig{
		InMemory: true,
		Signer:   NewSigner("test-secret", "http://localhost:8000"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", "http://example.com/")
	raw := signer.Sign("alice/1_id_a b.txt", time.Minute)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/blobs/alice/1_id_a b.txt", u.Path)
	assert.True(t, strings.HasPrefix(raw, "http://example.com/blobs/alice/1_id_a%20b.txt?"))

	assert.NoError(t, signer.Verify("alice/1_id_a b.txt", u.Query()))
	assert.ErrorIs(t, signer.Verify("alice/other", u.Query()), ErrBadSignature)

	other := NewSigner("different", "http://example.com")
	assert.ErrorIs(t, other.Verify("alice/1_id_a b.txt", u.Query()), ErrBadSignature)
}

func TestSignerRejects(t *testing.T) {
	signer := NewSigner("secret", "http://example.com")
	base := time.Unix(1_700_000_000, 0)
	signer.now = func() time.Time { return base }

	u, err := url.Parse(signer.Sign("p", 60*time.Second))
	require.NoError(t, err)

	tests := []struct {
		name    string
		query   url.Values
		at      time.Time
		wantErr error
	}{
		{name: "valid", query: u.Query(), at: base.Add(59 * time.Second)},
		{name: "expired", query: u.Query(), at: base.Add(61 * time.Second), wantErr: ErrExpired},
		{name: "missing expires", query: url.Values{"sig": {u.Query().Get("sig")}}, at: base, wantErr: ErrBadSignature},
		{
			name:    "extended expiry",
			query:   url.Values{"sig": {u.Query().Get("sig")}, "expires": {"9999999999"}},
			at:      base,
			wantErr: ErrBadSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer.now = func() time.Time { return tt.at }
			err := signer.Verify("p", tt.query)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBadgerStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestBadgerStore(t)

	path, err := store.Put(ctx, "alice", "notes.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "alice/"))
	assert.True(t, strings.HasSuffix(path, "_notes.txt"))

	other, err := store.Put(ctx, "alice", "notes.txt", []byte("again"), "text/plain")
	require.NoError(t, err)
	assert.NotEqual(t, path, other, "every upload gets a distinct path")

	data, mimeType, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "text/plain", mimeType)

	require.NoError(t, store.Delete(ctx, path))
	_, _, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, path), "deleting a missing blob is not an error")
}

func TestBadgerStoreOpenSigned(t *testing.T) {
	ctx := context.Background()
	store := newTestBadgerStore(t)

	path, err := store.Put(ctx, "alice", "a.bin", []byte{1, 2, 3}, "application/x-test")
	require.NoError(t, err)

	signed, err := store.SignedURL(ctx, path, time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	data, mimeType, err := store.OpenSigned(ctx, path, u.Query())
	require.NoError(t, err)
	assert.Equal(t, "application/x-test", mimeType)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = store.OpenSigned(ctx, path, url.Values{"expires": u.Query()["expires"], "sig": {"bad"}})
	assert.ErrorIs(t, err, ErrBadSignature)

	require.NoError(t, store.Delete(ctx, path))
	_, _, err = store.OpenSigned(ctx, path, u.Query())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewBadgerStoreRequiresSigner(t *testing.T) {
	_, err := NewBadgerStore(BadgerStoreConfig{InMemory: true})
	assert.Error(t, err)

	_, err = NewBadgerStore(BadgerStoreConfig{Signer: NewSigner("s", "http://x")})
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		cfg         types.BlobConfig
		expectError string
	}{
		{
			name: "badger in memory",
			cfg: types.BlobConfig{
				Type:          "badger",
				SigningSecret: "s",
				Badger:        map[string]any{"in_memory": true},
			},
		},
		{
			name: "badger without secret",
			cfg:  types.BlobConfig{Type: "badger", Badger: map[string]any{"in_memory": true}},
		},
		{
			name:        "badger bad option type",
			cfg:         types.BlobConfig{Type: "badger", Badger: map[string]any{"path": 42}},
			expectError: "decode",
		},
		{
			name:        "s3 without bucket",
			cfg:         types.BlobConfig{Type: "s3", S3: map[string]any{"region": "us-east-1"}},
			expectError: "bucket is required",
		},
		{
			name:        "s3 without region",
			cfg:         types.BlobConfig{Type: "s3", S3: map[string]any{"bucket": "b"}},
			expectError: "region is required",
		},
		{
			name:        "unknown",
			cfg:         types.BlobConfig{Type: "ftp"},
			expectError: "unknown blob store type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := New(ctx, tt.cfg, "http://localhost:8000")
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			defer gw.Close()
			_, ok := gw.(URLServer)
			assert.True(t, ok, "badger gateway serves its own URLs")
		})
	}
}

func TestFactoryS3(t *testing.T) {
	gw, err := New(context.Background(), types.BlobConfig{
		Type: "s3",
		S3: map[string]any{
			"region":            "us-east-1",
			"bucket":            "nimbus",
			"endpoint":          "http://localhost:4566",
			"access_key_id":     "test",
			"secret_access_key": "test",
		},
	}, "")
	require.NoError(t, err)
	defer gw.Close()

	_, ok := gw.(URLServer)
	assert.False(t, ok, "s3 URLs point at the bucket, not at this server")
}

// Presigning is computed locally, so no S3 service is needed.
func TestS3StoreSignedURL(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String("http://localhost:4566"),
		UsePathStyle: true,
	})
	store, err := NewS3Store(S3StoreConfig{Client: client, Bucket: "nimbus", KeyPrefix: "/files/"})
	require.NoError(t, err)

	signed, err := store.SignedURL(context.Background(), "alice/1_id_a.txt", 60*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/nimbus/files/alice/1_id_a.txt", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewS3StoreValidation(t *testing.T) {
	_, err := NewS3Store(S3StoreConfig{Bucket: "b"})
	assert.Error(t, err)

	_, err = NewS3Store(S3StoreConfig{Client: s3.New(s3.Options{Region: "us-east-1"})})
	assert.Error(t, err)
}
