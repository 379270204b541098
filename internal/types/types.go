package types

import (
	"time"
)

// Node represents a filesystem node (file or folder) owned by exactly one user
type Node struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`                 // "folder" or "file"
	ParentID         *string   `json:"parent_id"`            // nil means root
	IsTrashed        bool      `json:"is_trashed"`           // soft-delete flag
	OriginalParentID *string   `json:"-"`                    // parent at trash time, used by restore
	StoragePath      string    `json:"-"`                    // blob locator, files only
	MimeType         string    `json:"mime_type,omitempty"`  // files only
	SizeBytes        int64     `json:"size_bytes"`           // 0 for folders
	Checksum         string    `json:"checksum,omitempty"`   // SHA-256 of the content, files only
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsFolder reports whether the node is a folder
func (n *Node) IsFolder() bool {
	return n.Kind == NodeKindFolder
}

// IsFile reports whether the node is a file
func (n *Node) IsFile() bool {
	return n.Kind == NodeKindFile
}

// ShareGrant confers read access to one file for one non-owning user
type ShareGrant struct {
	ID               string    `json:"id"`
	FileID           string    `json:"file_id"`
	SharedByUserID   string    `json:"shared_by_user_id"`
	SharedWithUserID string    `json:"shared_with_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// SharedItem is a file as seen by a share recipient. Parent linkage belongs to
// the owner's tree and is not exposed.
type SharedItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	SharedBy  string    `json:"shared_by"`
	SharedAt  time.Time `json:"shared_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the subscription plan of a user. It is provisioned outside the
// filesystem core (signup or billing).
type Profile struct {
	UserID string `json:"user_id"`
	Plan   Plan   `json:"plan"`
}

// Plan is a subscription tier
type Plan string

// Plan constants
const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan maps a stored plan name to a Plan. Unknown or empty values fall back to free.
func ParsePlan(s string) Plan {
	switch Plan(s) {
	case PlanPro:
		return PlanPro
	default:
		return PlanFree
	}
}

// StorageUsage is the payload of the storage endpoint
type StorageUsage struct {
	TotalUsage int64 `json:"totalUsage"`
	Plan       Plan  `json:"plan"`
	Limit      int64 `json:"limit"`
}

// User is an account known to the identity provider
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an issued bearer token. Only the token hash is persisted.
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// AuthResult is returned by sign-in
type AuthResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// NodeKind constants
const (
	NodeKindFolder = "folder"
	NodeKindFile   = "file"
)
