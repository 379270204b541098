package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// DB wraps a database/sql connection to DuckDB or SQLite and provides CRUD
// for nodes, share grants, profiles, users and sessions.
type DB struct {
	conn   *sql.DB
	driver string
	seq    atomic.Int64 // insertion order of nodes
}

// New opens the database at dbPath with the given driver and initializes the
// schema. An empty path opens an in-memory database.
func New(driver, dbPath string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch driver {
	case DriverDuckDB:
		conn, err = sql.Open("duckdb", dbPath)
	case DriverSQLite:
		if dbPath == "" || dbPath == ":memory:" {
			conn, err = sql.Open("sqlite", ":memory:")
			if err == nil {
				// each connection to :memory: is a separate database
				conn.SetMaxOpenConns(1)
			}
		} else {
			conn, err = sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	db := &DB{conn: conn, driver: driver}

	if err := db.InitializeSchema(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitializeSchema creates all tables (and indexes where supported) and seeds
// the node insertion counter. It is idempotent.
func (db *DB) InitializeSchema(ctx context.Context) error {
	for _, stmt := range BuildSchemaStatements(db.driver) {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	var maxSeq int64
	if err := db.conn.QueryRowContext(ctx, "SELECT CAST(COALESCE(MAX(seq), 0) AS BIGINT) FROM nodes").Scan(&maxSeq); err != nil {
		return fmt.Errorf("failed to read node sequence: %w", err)
	}
	db.seq.Store(maxSeq)

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver name the database was opened with
func (db *DB) Driver() string {
	return db.driver
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*types.Node, error) {
	node := &types.Node{}
	var (
		parentID, originalParentID  sql.NullString
		storagePath, mimeType, hash sql.NullString
		createdAt, updatedAt        int64
	)

	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.Name,
		&node.Kind,
		&parentID,
		&node.IsTrashed,
		&originalParentID,
		&storagePath,
		&mimeType,
		&node.SizeBytes,
		&hash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	node.ParentID = fromNull(parentID)
	node.OriginalParentID = fromNull(originalParentID)
	node.StoragePath = storagePath.String
	node.MimeType = mimeType.String
	node.Checksum = hash.String
	node.CreatedAt = time.Unix(0, createdAt).UTC()
	node.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return node, nil
}

func collectNodes(rows *sql.Rows) ([]*types.Node, error) {
	defer rows.Close()

	nodes := make([]*types.Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, types.StoreError(fmt.Errorf("failed to scan node: %w", err))
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, types.StoreError(fmt.Errorf("error iterating nodes: %w", err))
	}

	return nodes, nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func emptyToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertNode inserts a new node. CreatedAt/UpdatedAt are set when zero.
func (db *DB) InsertNode(ctx context.Context, node *types.Node) error {
	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	if node.UpdatedAt.IsZero() {
		node.UpdatedAt = node.CreatedAt
	}

	query := `INSERT INTO nodes (` + nodeColumns + `, seq, name_folded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		node.ID,
		node.OwnerID,
		node.Name,
		node.Kind,
		toNull(node.ParentID),
		node.IsTrashed,
		toNull(node.OriginalParentID),
		emptyToNull(node.StoragePath),
		emptyToNull(node.MimeType),
		node.SizeBytes,
		emptyToNull(node.Checksum),
		node.CreatedAt.UnixNano(),
		node.UpdatedAt.UnixNano(),
		db.seq.Add(1),
		foldName(node.Name),
	)
	if err != nil {
		return types.StoreError(fmt.Errorf("failed to insert node %s: %w", node.ID, err))
	}

	return nil
}

// GetNodeByID retrieves a node by its ID
func (db *DB) GetNodeByID(ctx context.Context, id string) (*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = ?`
	node, err := scanNode(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("Item not found.")
		}
		return nil, types.StoreError(fmt.Errorf("failed to get node %s: %w", id, err))
	}
	return node, nil
}

// GetChildren lists the owner's nodes under parentID (nil for root) with the
// given trash state, in insertion order.
func (db *DB) GetChildren(ctx context.Context, ownerID string, parentID *string, trashed bool) ([]*types.Node, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if parentID == nil {
		query := `SELECT ` + nodeColumns + ` FROM nodes
WHERE owner_id = ? AND parent_id IS NULL AND is_trashed = ?
ORDER BY seq`
		rows, err = db.conn.QueryContext(ctx, query, ownerID, trashed)
	} else {
		query := `SELECT ` + nodeColumns + ` FROM nodes
WHERE owner_id = ? AND parent_id = ? AND is_trashed = ?
ORDER BY seq`
		rows, err = db.conn.QueryContext(ctx, query, ownerID, *parentID, trashed)
	}
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to query children: %w", err))
	}

	return collectNodes(rows)
}

// GetAllChildren lists every direct child of parentID regardless of trash state
func (db *DB) GetAllChildren(ctx context.Context, parentID string) ([]*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id = ? ORDER BY seq`
	rows, err := db.conn.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to query children of %s: %w", parentID, err))
	}
	return collectNodes(rows)
}

// GetTrashed lists all of the owner's trashed nodes in insertion order
func (db *DB) GetTrashed(ctx context.Context, ownerID string) ([]*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE owner_id = ? AND is_trashed = ? ORDER BY seq`
	rows, err := db.conn.QueryContext(ctx, query, ownerID, true)
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to query trashed nodes: %w", err))
	}
	return collectNodes(rows)
}

// foldName is the case folding applied to names for search. SQLite's lower()
// only folds ASCII, so folding happens here and is stored in name_folded.
func foldName(name string) string {
	return strings.ToLower(name)
}

// SearchByName returns the owner's non-trashed nodes whose name contains
// needle, ignoring case.
func (db *DB) SearchByName(ctx context.Context, ownerID, needle string) ([]*types.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
WHERE owner_id = ? AND is_trashed = ? AND instr(name_folded, ?) > 0
ORDER BY seq`
	rows, err := db.conn.QueryContext(ctx, query, ownerID, false, foldName(needle))
	if err != nil {
		return nil, types.StoreError(fmt.Errorf("failed to search nodes: %w", err))
	}
	return collectNodes(rows)
}

// execOne runs an UPDATE/DELETE that must affect exactly one row
func (db *DB) execOne(ctx context.Context, what, id, query string, args ...any) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return types.StoreError(fmt.Errorf("failed to %s %s: %w", what, id, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return types.StoreError(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rowsAffected == 0 {
		return types.NotFoundf("Item not found.")
	}

	return nil
}

// UpdateNodeName renames a node
func (db *DB) UpdateNodeName(ctx context.Context, id, name string) error {
	return db.execOne(ctx, "rename node", id,
		`UPDATE nodes SET name = ?, name_folded = ?, updated_at = ? WHERE id = ?`,
		name, foldName(name), time.Now().UnixNano(), id)
}

// UpdateNodeParent re-parents a node (nil parent means root)
func (db *DB) UpdateNodeParent(ctx context.Context, id string, parentID *string) error {
	return db.execOne(ctx, "move node", id,
		`UPDATE nodes SET parent_id = ?, updated_at = ? WHERE id = ?`,
		toNull(parentID), time.Now().UnixNano(), id)
}

// UpdateTrashState sets the trash flag together with the parent linkage and
// the remembered original parent.
func (db *DB) UpdateTrashState(ctx context.Context, id string, trashed bool, parentID, originalParentID *string) error {
	return db.execOne(ctx, "update trash state of", id,
		`UPDATE nodes SET is_trashed = ?, parent_id = ?, original_parent_id = ?, updated_at = ? WHERE id = ?`,
		trashed, toNull(parentID), toNull(originalParentID), time.Now().UnixNano(), id)
}

// DeleteNode deletes a node record
func (db *DB) DeleteNode(ctx context.Context, id string) error {
	return db.execOne(ctx, "delete node", id, `DELETE FROM nodes WHERE id = ?`, id)
}

// SumFileSizes returns the total size of the owner's non-trashed files
func (db *DB) SumFileSizes(ctx context.Context, ownerID string) (int64, error) {
	query := `SELECT CAST(COALESCE(SUM(size_bytes), 0) AS BIGINT) FROM nodes
WHERE owner_id = ? AND kind = ? AND is_trashed = ?`

	var total int64
	if err := db.conn.QueryRowContext(ctx, query, ownerID, types.NodeKindFile, false).Scan(&total); err != nil {
		return 0, types.StoreError(fmt.Errorf("failed to compute usage: %w", err))
	}
	return total, nil
}

// CountNodes returns the number of nodes owned by ownerID
func (db *DB) CountNodes(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, types.StoreError(fmt.Errorf("failed to count nodes: %w", err))
	}
	return count, nil
}
