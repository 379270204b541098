package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/auth"
	"github.com/Project-Sylos/Nimbus/internal/blob"
	"github.com/Project-Sylos/Nimbus/internal/config"
	"github.com/Project-Sylos/Nimbus/internal/db"
	"github.com/Project-Sylos/Nimbus/internal/metrics"
	"github.com/Project-Sylos/Nimbus/internal/nimbusfs"
	"github.com/Project-Sylos/Nimbus/internal/types"
)

// Nimbus is the public SDK entry point. It owns the metadata store and the
// blob gateway and hands out per-user sessions.
type Nimbus struct {
	cfg   *types.Config
	db    *db.DB
	blobs blob.Gateway
	fs    *nimbusfs.Service
	auth  *auth.LocalProvider
}

// New creates a Nimbus instance from a YAML config file. An empty path uses
// defaults and NIMBUS_* environment variables only.
func New(configPath string) (*Nimbus, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Nimbus instance from an already built config. The
// config is defaulted and validated.
func NewWithConfig(cfg *types.Config) (*Nimbus, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	database, err := db.New(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	blobs, err := blob.New(context.Background(), cfg.Blob, cfg.API.PublicURL)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	fs := nimbusfs.New(database, blobs, nimbusfs.Options{
		PlanLimits:    config.PlanLimits(cfg),
		AncestryCheck: cfg.Filesystem.AncestryCheck,
		DownloadTTL:   cfg.API.DownloadTTL,
		Metrics:       metrics.NewFSMetrics(),
	})

	return &Nimbus{
		cfg:   cfg,
		db:    database,
		blobs: blobs,
		fs:    fs,
		auth:  auth.NewLocalProvider(database, cfg.Auth.SessionTTL),
	}, nil
}

// For returns a session acting as userID
func (n *Nimbus) For(userID string) *Session {
	return n.fs.For(userID)
}

// Filesystem returns the shared filesystem service
func (n *Nimbus) Filesystem() *nimbusfs.Service {
	return n.fs
}

// Auth returns the identity provider
func (n *Nimbus) Auth() auth.Provider {
	return n.auth
}

// Blobs returns the blob gateway
func (n *Nimbus) Blobs() blob.Gateway {
	return n.blobs
}

// SetPlan changes the plan of a user. Billing integrations call this; the
// filesystem only reads plans.
func (n *Nimbus) SetPlan(ctx context.Context, userID string, plan Plan) error {
	return n.db.UpsertProfile(ctx, &types.Profile{UserID: userID, Plan: plan})
}

// NodeCount returns how many nodes userID owns, trashed ones included
func (n *Nimbus) NodeCount(ctx context.Context, userID string) (int, error) {
	return n.db.CountNodes(ctx, userID)
}

// PurgeExpiredSessions drops sessions that expired before now
func (n *Nimbus) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return n.db.DeleteExpiredSessions(ctx, time.Now())
}

// GetConfig returns the current configuration
func (n *Nimbus) GetConfig() *types.Config {
	return n.cfg
}

// Close releases the blob gateway and the database. Always call this during
// graceful shutdown so Badger and DuckDB flush to disk.
func (n *Nimbus) Close() error {
	blobErr := n.blobs.Close()
	if err := n.db.Close(); err != nil {
		return err
	}
	return blobErr
}

// Re-export types for convenience
type (
	Config       = types.Config
	Node         = types.Node
	ShareGrant   = types.ShareGrant
	SharedItem   = types.SharedItem
	StorageUsage = types.StorageUsage
	Plan         = types.Plan
	User         = types.User
	Principal    = types.Principal
	AuthResult   = types.AuthResult
	Session      = nimbusfs.Session
	Upload       = nimbusfs.Upload
)

// Re-export constants
const (
	NodeKindFolder = types.NodeKindFolder
	NodeKindFile   = types.NodeKindFile

	PlanFree = types.PlanFree
	PlanPro  = types.PlanPro
)

// Re-export error kinds for errors.Is checks
var (
	ErrValidation    = types.ErrValidation
	ErrAuth          = types.ErrAuth
	ErrNotFound      = types.ErrNotFound
	ErrQuotaExceeded = types.ErrQuotaExceeded
	ErrConflict      = types.ErrConflict
	ErrStore         = types.ErrStore
)
