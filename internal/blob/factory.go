package blob

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"
)

// New creates the Gateway selected by cfg.Type.
//
// Supported types:
//   - "badger": embedded BadgerDB, signed URLs served at publicURL + "/blobs/"
//   - "s3": Amazon S3 or a compatible service, presigned URLs
func New(ctx context.Context, cfg types.BlobConfig, publicURL string) (Gateway, error) {
	switch cfg.Type {
	case "badger", "":
		return createBadgerStore(cfg, publicURL)
	case "s3":
		return createS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob store type: %q (supported: badger, s3)", cfg.Type)
	}
}

func createBadgerStore(cfg types.BlobConfig, publicURL string) (Gateway, error) {
	type BadgerOptions struct {
		Path     string `mapstructure:"path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var opts BadgerOptions
	if err := mapstructure.Decode(cfg.Badger, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode badger blob store config: %w", err)
	}

	secret := cfg.SigningSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("blob.signing_secret is not set; download links will not survive a restart")
	}

	store, err := NewBadgerStore(BadgerStoreConfig{
		Path:     opts.Path,
		InMemory: opts.InMemory,
		Signer:   NewSigner(secret, publicURL),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Badger blob store initialized: path=%s, in_memory=%v", opts.Path, opts.InMemory)
	return store, nil
}

func createS3Store(ctx context.Context, options map[string]any) (Gateway, error) {
	type S3Options struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var opts S3Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode s3 blob store config: %w", err)
	}

	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 blob store: bucket is required")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("s3 blob store: region is required")
	}

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(opts.Region),
	}

	// Custom endpoint for MinIO, Localstack and friends
	if opts.Endpoint != "" {
		//nolint:staticcheck // EndpointResolverWithOptions is still the simplest way to pin a host
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(resolver))
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := NewS3Store(S3StoreConfig{
		Client:    client,
		Bucket:    opts.Bucket,
		KeyPrefix: opts.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("S3 blob store initialized: bucket=%s, region=%s, prefix=%s",
		opts.Bucket, opts.Region, opts.KeyPrefix)

	return store, nil
}
