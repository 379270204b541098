package nimbusfs

import (
	"context"
	"errors"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/google/uuid"
)

// Get returns a node the caller owns or has been granted read access to
func (u *Session) Get(ctx context.Context, id string) (*types.Node, error) {
	return u.authorize(ctx, id, ModeRead)
}

// ListChildren returns the caller's non-trashed nodes under parentID, or at
// root when parentID is nil, in insertion order.
func (u *Session) ListChildren(ctx context.Context, parentID *string) ([]*types.Node, error) {
	if parentID != nil && *parentID != "" {
		parent, err := u.authorize(ctx, *parentID, ModeOwner)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, types.Validationf("Parent is not a folder.")
		}
		return u.svc.store.GetChildren(ctx, u.userID, &parent.ID, false)
	}
	return u.svc.store.GetChildren(ctx, u.userID, nil, false)
}

// ListTrashed returns every trashed node of the caller
func (u *Session) ListTrashed(ctx context.Context) ([]*types.Node, error) {
	return u.svc.store.GetTrashed(ctx, u.userID)
}

// CreateFolder creates a folder under parentID (nil for root)
func (u *Session) CreateFolder(ctx context.Context, name string, parentID *string) (*types.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.Validationf("Folder name is required.")
	}

	parent, err := u.folder(ctx, parentID)
	if err != nil {
		return nil, err
	}

	now := u.svc.now().UTC()
	node := &types.Node{
		ID:        uuid.New().String(),
		OwnerID:   u.userID,
		Name:      name,
		Kind:      types.NodeKindFolder,
		ParentID:  parent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.svc.store.InsertNode(ctx, node); err != nil {
		return nil, err
	}

	logger.Debug("Created folder %s for %s", node.ID, u.userID)
	return node, nil
}

// Rename changes the display name of a node
func (u *Session) Rename(ctx context.Context, id, newName string) (*types.Node, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, types.Validationf("New name is required.")
	}

	node, err := u.authorize(ctx, id, ModeOwner)
	if err != nil {
		return nil, err
	}

	if err := u.svc.store.UpdateNodeName(ctx, node.ID, newName); err != nil {
		return nil, err
	}
	return u.svc.store.GetNodeByID(ctx, node.ID)
}

// Move re-parents a node under destinationID (nil for root)
func (u *Session) Move(ctx context.Context, id string, destinationID *string) (*types.Node, error) {
	if destinationID != nil && *destinationID == id {
		return nil, types.Validationf("Cannot move a folder into itself.")
	}

	node, err := u.authorize(ctx, id, ModeOwner)
	if err != nil {
		return nil, err
	}
	if node.IsTrashed {
		return nil, types.Validationf("Cannot move an item that is in the trash.")
	}

	dest, err := u.folder(ctx, destinationID)
	if err != nil {
		return nil, err
	}

	if dest != nil && u.svc.opts.AncestryCheck && node.IsFolder() {
		inside, err := u.isDescendant(ctx, *dest, node.ID)
		if err != nil {
			return nil, err
		}
		if inside {
			return nil, types.Validationf("Cannot move a folder into one of its own subfolders.")
		}
	}

	if err := u.svc.store.UpdateNodeParent(ctx, node.ID, dest); err != nil {
		return nil, err
	}
	return u.svc.store.GetNodeByID(ctx, node.ID)
}

// isDescendant walks the ancestor chain of id looking for ancestorID
func (u *Session) isDescendant(ctx context.Context, id, ancestorID string) (bool, error) {
	seen := make(map[string]bool)
	current := &id
	for current != nil {
		if *current == ancestorID {
			return true, nil
		}
		if seen[*current] {
			// already cyclic; refuse to add to it
			return true, nil
		}
		seen[*current] = true

		node, err := u.svc.store.GetNodeByID(ctx, *current)
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		current = node.ParentID
	}
	return false, nil
}

// Trash soft-deletes a node. It is detached from its parent, which is
// remembered for Restore. Trashing a trashed node is a no-op.
func (u *Session) Trash(ctx context.Context, id string) (*types.Node, error) {
	node, err := u.authorize(ctx, id, ModeOwner)
	if err != nil {
		return nil, err
	}
	if node.IsTrashed {
		return node, nil
	}

	if err := u.svc.store.UpdateTrashState(ctx, node.ID, true, nil, node.ParentID); err != nil {
		return nil, err
	}
	return u.svc.store.GetNodeByID(ctx, node.ID)
}

// Restore takes a node out of the trash. It returns to its original parent
// when that folder is still owned by the caller and not trashed, otherwise
// to root. A folder whose original parent now sits inside its own subtree
// is also restored to root.
func (u *Session) Restore(ctx context.Context, id string) (*types.Node, error) {
	node, err := u.authorize(ctx, id, ModeOwner)
	if err != nil {
		return nil, err
	}
	if !node.IsTrashed {
		return node, nil
	}

	var parent *string
	if node.OriginalParentID != nil {
		original, err := u.svc.store.GetNodeByID(ctx, *node.OriginalParentID)
		switch {
		case err == nil:
			if original.OwnerID == u.userID && original.IsFolder() && !original.IsTrashed {
				parent = &original.ID
			}
			if parent != nil && u.svc.opts.AncestryCheck && node.IsFolder() {
				// the original parent may have been moved under this folder
				// while it sat in the trash
				inside, err := u.isDescendant(ctx, original.ID, node.ID)
				if err != nil {
					return nil, err
				}
				if inside {
					parent = nil
				}
			}
		case errors.Is(err, types.ErrNotFound):
		default:
			return nil, err
		}
	}

	if err := u.svc.store.UpdateTrashState(ctx, node.ID, false, parent, nil); err != nil {
		return nil, err
	}
	return u.svc.store.GetNodeByID(ctx, node.ID)
}

// PermanentDelete removes a node for good. Folders are removed with all of
// their descendants. Blob removal is best-effort: a failure is logged and
// counted, and the metadata is deleted regardless.
func (u *Session) PermanentDelete(ctx context.Context, id string) error {
	node, err := u.authorize(ctx, id, ModeOwner)
	if err != nil {
		return err
	}
	return u.deleteTree(ctx, node, make(map[string]bool))
}

// deleteTree removes node and its descendants. visited stops the walk on
// parent cycles, which can exist when the ancestry check is disabled.
func (u *Session) deleteTree(ctx context.Context, node *types.Node, visited map[string]bool) error {
	if visited[node.ID] {
		return nil
	}
	visited[node.ID] = true

	if err := ctx.Err(); err != nil {
		return err
	}

	if node.IsFolder() {
		children, err := u.svc.store.GetAllChildren(ctx, node.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := u.deleteTree(ctx, child, visited); err != nil {
				return err
			}
		}
	}

	if node.IsFile() {
		u.svc.deleteBlob(ctx, node.StoragePath)
		if err := u.svc.store.DeleteSharesForFile(ctx, node.ID); err != nil {
			return err
		}
	}

	return u.svc.store.DeleteNode(ctx, node.ID)
}

// deleteBlob removes a blob without failing the caller
func (s *Service) deleteBlob(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.metrics.BlobDeleteFailed()
		logger.Warn("Storage delete error for %s: %v", path, err)
	}
}

// Search returns the caller's non-trashed nodes whose name contains query,
// ignoring case.
func (u *Session) Search(ctx context.Context, query string) ([]*types.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.Validationf("Search query is required.")
	}
	return u.svc.store.SearchByName(ctx, u.userID, query)
}
