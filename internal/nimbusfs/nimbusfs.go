// Package nimbusfs is the filesystem core: the per-user node hierarchy with
// trash semantics, plan quotas, file sharing and the indirection to blob
// storage.
//
// A Service is shared by every request. Callers obtain a Session scoped to
// one user with For and perform all operations through it, so no handler
// ever touches another user's nodes by accident.
package nimbusfs

import (
	"context"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/blob"
	"github.com/Project-Sylos/Nimbus/internal/metrics"
	"github.com/Project-Sylos/Nimbus/internal/types"
)

// Store is the metadata persistence the filesystem needs. *db.DB satisfies it.
type Store interface {
	InsertNode(ctx context.Context, node *types.Node) error
	GetNodeByID(ctx context.Context, id string) (*types.Node, error)
	GetChildren(ctx context.Context, ownerID string, parentID *string, trashed bool) ([]*types.Node, error)
	GetAllChildren(ctx context.Context, parentID string) ([]*types.Node, error)
	GetTrashed(ctx context.Context, ownerID string) ([]*types.Node, error)
	SearchByName(ctx context.Context, ownerID, needle string) ([]*types.Node, error)
	UpdateNodeName(ctx context.Context, id, name string) error
	UpdateNodeParent(ctx context.Context, id string, parentID *string) error
	UpdateTrashState(ctx context.Context, id string, trashed bool, parentID, originalParentID *string) error
	DeleteNode(ctx context.Context, id string) error
	SumFileSizes(ctx context.Context, ownerID string) (int64, error)

	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	InsertShare(ctx context.Context, grant *types.ShareGrant) error
	HasShare(ctx context.Context, fileID, recipientID string) (bool, error)
	GetSharesForFile(ctx context.Context, fileID string) ([]*types.ShareGrant, error)
	GetSharedWith(ctx context.Context, recipientID string) ([]*types.SharedItem, error)
	DeleteShare(ctx context.Context, fileID, recipientID string) error
	DeleteSharesForFile(ctx context.Context, fileID string) error
}

// Options tunes a Service
type Options struct {
	// PlanLimits maps each plan to its byte quota. Plans missing here fall
	// back to the free limit.
	PlanLimits map[types.Plan]int64

	// AncestryCheck rejects moves into a descendant of the moved node.
	// Self-moves are rejected regardless.
	AncestryCheck bool

	// DownloadTTL is the lifetime of signed download URLs
	DownloadTTL time.Duration

	Metrics metrics.FSMetrics
}

// DefaultDownloadTTL is used when Options.DownloadTTL is zero
const DefaultDownloadTTL = 60 * time.Second

// Service holds the collaborators shared by all sessions
type Service struct {
	store   Store
	blobs   blob.Gateway
	opts    Options
	metrics metrics.FSMetrics
	now     func() time.Time
}

// New creates a Service
func New(store Store, blobs blob.Gateway, opts Options) *Service {
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = DefaultDownloadTTL
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewFSMetrics()
	}

	return &Service{
		store:   store,
		blobs:   blobs,
		opts:    opts,
		metrics: m,
		now:     time.Now,
	}
}

// Session is a handle scoped to one user. It is cheap to create and holds no
// state beyond the user id.
type Session struct {
	svc    *Service
	userID string
}

// For returns a Session acting as userID
func (s *Service) For(userID string) *Session {
	return &Session{svc: s, userID: userID}
}

// UserID returns the user the session acts as
func (u *Session) UserID() string {
	return u.userID
}
