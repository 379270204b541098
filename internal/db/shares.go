package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

const shareColumns = `id, file_id, shared_by_user_id, shared_with_user_id, created_at`

func scanShare(row rowScanner) (*types.ShareGrant, error) {
	grant := &types.ShareGrant{}
	var createdAt int64
	if err := row.Scan(&grant.ID, &grant.FileID, &grant.SharedByUserID, &grant.SharedWithUserID, &createdAt); err != nil {
		return nil, err
	}
	grant.CreatedAt = time.Unix(0, createdAt).UTC()
	return grant, nil
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint. Both drivers only expose this through the message.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "primary key")
}

// InsertShare records a share grant. A second grant for the same file and
// recipient is a conflict.
func (db *DB) InsertShare(ctx context.Context, grant *types.ShareGrant) error {
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO shares (` + shareColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		grant.ID,
		grant.FileID,
		grant.SharedByUserID,
		grant.SharedWithUserID,
		grant.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Conflictf("This file is already shared with that user.")
		}
		return types.StoreError(fmt.Errorf("failed to insert share: %w", err))
	}

	return nil
}

// HasShare reports whether recipientID holds a grant on fileID
func (db *DB) HasShare(ctx context.Context, fileID, recipientID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shares WHERE file_id = ? AND shared_with_user_id = ?`,
		fileID, recipientID,
	).Scan(&count)
	if err != nil {
		return false, types.StoreError(fmt.Errorf("failed to check share: %w", err))
	}
	return count > 0, nil
}

// GetSharesForFile lists grants on a file, oldest first
func (db *DB) GetSharesForFile(ctx context.Context, fileID string) ([]*types.ShareGrant, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE file_id = ? ORDER BY created_at, id`
	rows, err := db.conn.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to query shares: %w", err))
	}
	defer rows.Close()

	grants := make([]*types.ShareGrant, 0)
	for rows.Next() {
		grant, err := scanShare(rows)
		if err != nil {
			return nil, types.StoreError(fmt.Errorf("failed to scan share: %w", err))
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, types.StoreError(fmt.Errorf("error iterating shares: %w", err))
	}

	return grants, nil
}

// GetSharedWith lists files shared with recipientID. Grants whose file no
// longer exists or is trashed are skipped.
func (db *DB) GetSharedWith(ctx context.Context, recipientID string) ([]*types.SharedItem, error) {
	query := `SELECT n.id, n.name, n.kind, n.mime_type, n.size_bytes, s.shared_by_user_id, s.created_at, n.updated_at
FROM shares s
JOIN nodes n ON n.id = s.file_id
WHERE s.shared_with_user_id = ? AND n.is_trashed = ?
ORDER BY s.created_at, s.id`

	rows, err := db.conn.QueryContext(ctx, query, recipientID, false)
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to query shared files: %w", err))
	}
	defer rows.Close()

	items := make([]*types.SharedItem, 0)
	for rows.Next() {
		item := &types.SharedItem{}
		var (
			mimeType            sql.NullString
			sharedAt, updatedAt int64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Kind, &mimeType, &item.SizeBytes, &item.SharedBy, &sharedAt, &updatedAt); err != nil {
			return nil, types.StoreError(fmt.Errorf("failed to scan shared file: %w", err))
		}
		item.MimeType = mimeType.String
		item.SharedAt = time.Unix(0, sharedAt).UTC()
		item.UpdatedAt = time.Unix(0, updatedAt).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, types.StoreError(fmt.Errorf("error iterating shared files: %w", err))
	}

	return items, nil
}

// DeleteShare revokes the grant for fileID and recipient
func (db *DB) DeleteShare(ctx context.Context, fileID, recipientID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM shares WHERE file_id = ? AND shared_with_user_id = ?`, fileID, recipientID)
	if err != nil {
		return types.StoreError(fmt.Errorf("failed to delete share: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return types.NotFoundf("Share not found.")
	}
	return nil
}

// DeleteSharesForFile removes every grant on a file
func (db *DB) DeleteSharesForFile(ctx context.Context, fileID string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM shares WHERE file_id = ?`, fileID); err != nil {
		return types.StoreError(fmt.Errorf("failed to delete shares for %s: %w", fileID, err))
	}
	return nil
}
