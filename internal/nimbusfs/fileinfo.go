package nimbusfs

import (
	"io/fs"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// nodeFileInfo wraps a types.Node to implement fs.FileInfo
type nodeFileInfo struct {
	node *types.Node
}

// Name returns the display name of the node
func (fi *nodeFileInfo) Name() string {
	return fi.node.Name
}

// Size returns the content length for files; 0 for folders
func (fi *nodeFileInfo) Size() int64 {
	return fi.node.SizeBytes
}

// Mode returns read-only permission bits
func (fi *nodeFileInfo) Mode() fs.FileMode {
	if fi.node.IsFolder() {
		return fs.ModeDir | 0555
	}
	return 0444
}

func (fi *nodeFileInfo) ModTime() time.Time {
	return fi.node.UpdatedAt
}

func (fi *nodeFileInfo) IsDir() bool {
	return fi.node.IsFolder()
}

// Sys returns the underlying *types.Node
func (fi *nodeFileInfo) Sys() any {
	return fi.node
}
