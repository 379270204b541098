package nimbusfs

import (
	"context"
	"errors"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/google/uuid"
)

// Share grants the user registered under recipientEmail read access to a
// file the caller owns.
func (u *Session) Share(ctx context.Context, fileID, recipientEmail string) (*types.ShareGrant, error) {
	recipientEmail = strings.ToLower(strings.TrimSpace(recipientEmail))
	if recipientEmail == "" {
		return nil, types.Validationf("Recipient email is required.")
	}

	node, err := u.authorize(ctx, fileID, ModeOwner)
	if err != nil {
		return nil, err
	}
	if !node.IsFile() {
		return nil, types.Validationf("Only files can be shared.")
	}
	if node.IsTrashed {
		return nil, types.Validationf("Cannot share an item that is in the trash.")
	}

	recipient, err := u.svc.store.GetUserByEmail(ctx, recipientEmail)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.NotFoundf("Recipient user not found.")
	}
	if err != nil {
		return nil, err
	}
	if recipient.ID == u.userID {
		return nil, types.Validationf("You cannot share a file with yourself.")
	}

	grant := &types.ShareGrant{
		ID:               uuid.New().String(),
		FileID:           node.ID,
		SharedByUserID:   u.userID,
		SharedWithUserID: recipient.ID,
		CreatedAt:        u.svc.now().UTC(),
	}
	if err := u.svc.store.InsertShare(ctx, grant); err != nil {
		return nil, err
	}

	return grant, nil
}

// Unshare removes fileID from the caller's shared-with-me view. Removing a
// grant that does not exist succeeds.
func (u *Session) Unshare(ctx context.Context, fileID string) error {
	if fileID == "" {
		return types.Validationf("Item id is required.")
	}
	err := u.svc.store.DeleteShare(ctx, fileID, u.userID)
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// SharedWithMe lists files other users have shared with the caller.
// Grants whose file was deleted or trashed are skipped.
func (u *Session) SharedWithMe(ctx context.Context) ([]*types.SharedItem, error) {
	return u.svc.store.GetSharedWith(ctx, u.userID)
}

// ListShares lists the grants on a file the caller owns
func (u *Session) ListShares(ctx context.Context, fileID string) ([]*types.ShareGrant, error) {
	node, err := u.authorize(ctx, fileID, ModeOwner)
	if err != nil {
		return nil, err
	}
	return u.svc.store.GetSharesForFile(ctx, node.ID)
}

// RevokeShare removes recipientID's grant on a file the caller owns
func (u *Session) RevokeShare(ctx context.Context, fileID, recipientID string) error {
	if recipientID == "" {
		return types.Validationf("Recipient id is required.")
	}
	node, err := u.authorize(ctx, fileID, ModeOwner)
	if err != nil {
		return err
	}
	return u.svc.store.DeleteShare(ctx, node.ID, recipientID)
}
