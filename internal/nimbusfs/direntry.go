package nimbusfs

import (
	"io/fs"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// nodeDirEntry wraps a types.Node to implement fs.DirEntry
type nodeDirEntry struct {
	node *types.Node
}

func (de *nodeDirEntry) Name() string {
	return de.node.Name
}

func (de *nodeDirEntry) IsDir() bool {
	return de.node.IsFolder()
}

// Type returns the type bits for the entry
func (de *nodeDirEntry) Type() fs.FileMode {
	if de.node.IsFolder() {
		return fs.ModeDir
	}
	return 0
}

func (de *nodeDirEntry) Info() (fs.FileInfo, error) {
	return &nodeFileInfo{node: de.node}, nil
}
