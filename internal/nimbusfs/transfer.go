package nimbusfs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/google/uuid"
)

// ComputeChecksum computes a SHA256 checksum for the given data
func ComputeChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Upload is a file received from a client
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
	ParentID *string
}

// Upload admits the file against the caller's quota, stores its content and
// records its metadata. If the metadata write fails the stored blob is
// removed again.
func (u *Session) Upload(ctx context.Context, in Upload) (*types.Node, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, types.Validationf("No file was uploaded.")
	}

	parent, err := u.folder(ctx, in.ParentID)
	if err != nil {
		return nil, err
	}

	size := int64(len(in.Data))
	if err := u.AdmitUpload(ctx, size); err != nil {
		return nil, err
	}

	path, err := u.svc.blobs.Put(ctx, u.userID, name, in.Data, in.MimeType)
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("storage error: %w", err))
	}

	now := u.svc.now().UTC()
	node := &types.Node{
		ID:          uuid.New().String(),
		OwnerID:     u.userID,
		Name:        name,
		Kind:        types.NodeKindFile,
		ParentID:    parent,
		StoragePath: path,
		MimeType:    in.MimeType,
		SizeBytes:   size,
		Checksum:    ComputeChecksum(in.Data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.svc.store.InsertNode(ctx, node); err != nil {
		u.svc.deleteBlob(ctx, path)
		return nil, err
	}

	u.svc.metrics.UploadAccepted(size)
	logger.Info("Uploaded %s (%d bytes) for %s", node.ID, size, u.userID)
	return node, nil
}

// DownloadURL returns a signed URL for a file the caller owns or was granted
func (u *Session) DownloadURL(ctx context.Context, id string) (string, error) {
	node, err := u.authorize(ctx, id, ModeRead)
	if errors.Is(err, types.ErrNotFound) {
		return "", types.NotFoundf("File not found or you don't have access.")
	}
	if err != nil {
		return "", err
	}
	if !node.IsFile() || node.StoragePath == "" {
		return "", types.Validationf("Only files can be downloaded.")
	}

	url, err := u.svc.blobs.SignedURL(ctx, node.StoragePath, u.svc.opts.DownloadTTL)
	if err != nil {
		return "", types.StoreError(err)
	}
	return url, nil
}
