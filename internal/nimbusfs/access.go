package nimbusfs

import (
	"context"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// AccessMode is the kind of access requested on a node
type AccessMode int

const (
	// ModeOwner allows every mutation and is held only by the owner
	ModeOwner AccessMode = iota
	// ModeRead allows reading content; held by the owner and by share
	// recipients of a file.
	ModeRead
)

func (m AccessMode) String() string {
	switch m {
	case ModeOwner:
		return "owner"
	case ModeRead:
		return "read"
	default:
		return "unknown"
	}
}

// CanAccess is the single authorization decision for nodes. Owners hold
// every mode. Non-owners hold ModeRead on a non-trashed file when a share
// grant names them.
func (s *Service) CanAccess(ctx context.Context, userID string, node *types.Node, mode AccessMode) (bool, error) {
	if node == nil || userID == "" {
		return false, nil
	}
	if node.OwnerID == userID {
		return true, nil
	}
	if mode != ModeRead || !node.IsFile() || node.IsTrashed {
		return false, nil
	}
	return s.store.HasShare(ctx, node.ID, userID)
}

// authorize loads a node and checks mode. A node the caller may not access
// is reported as NotFound so its existence does not leak.
func (u *Session) authorize(ctx context.Context, id string, mode AccessMode) (*types.Node, error) {
	if id == "" {
		return nil, types.Validationf("Item id is required.")
	}

	node, err := u.svc.store.GetNodeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := u.svc.CanAccess(ctx, u.userID, node, mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.NotFoundf("Item not found.")
	}

	return node, nil
}

// folder resolves a parent reference. nil means root. The folder must be
// owned by the caller and not trashed.
func (u *Session) folder(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}

	node, err := u.authorize(ctx, *id, ModeOwner)
	if err != nil {
		return nil, err
	}
	if !node.IsFolder() {
		return nil, types.Validationf("Destination is not a folder.")
	}
	if node.IsTrashed {
		return nil, types.Validationf("Destination folder is in the trash.")
	}

	return &node.ID, nil
}
