//go:build integration
// +build integration

package blob

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestS3Store_Integration exercises the S3 gateway against Localstack.
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./internal/blob/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Store_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})

	bucket := "nimbus-test-bucket"
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	store, err := NewS3Store(S3StoreConfig{Client: client, Bucket: bucket, KeyPrefix: "it"})
	require.NoError(t, err)

	path, err := store.Put(ctx, "alice", "hello.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)

	defer func() {
		store.Delete(ctx, path)
		client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	}()

	data, mimeType, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", mimeType)

	signed, err := store.SignedURL(ctx, path, time.Minute)
	require.NoError(t, err)
	resp, err := http.Get(signed)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(ctx, path))
	_, _, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)
}
