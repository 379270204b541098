package nimbusfs

import (
	"context"
	"io/fs"
	"slices"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// treeFS is a read-only io/fs view of one user's non-trashed tree. Sibling
// names are not unique in Nimbus, so the earliest created node shadows later
// ones with the same name. Names that are not valid path elements are hidden.
type treeFS struct {
	ctx     context.Context
	session *Session
}

// FS returns the caller's tree as an fs.FS. ctx bounds every store and blob
// call made through it.
func (u *Session) FS(ctx context.Context) fs.FS {
	return &treeFS{ctx: ctx, session: u}
}

var (
	_ fs.ReadDirFS = (*treeFS)(nil)
	_ fs.StatFS    = (*treeFS)(nil)
)

func (t *treeFS) root() *types.Node {
	return &types.Node{Name: ".", Kind: types.NodeKindFolder, OwnerID: t.session.userID}
}

// children lists the visible children of folder in name order
func (t *treeFS) children(folder *types.Node) ([]*types.Node, error) {
	var parentID *string
	if folder.ID != "" {
		parentID = &folder.ID
	}

	nodes, err := t.session.svc.store.GetChildren(t.ctx, t.session.userID, parentID, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(nodes))
	visible := make([]*types.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.Name] || strings.Contains(n.Name, "/") || !fs.ValidPath(n.Name) || n.Name == "." {
			continue
		}
		seen[n.Name] = true
		visible = append(visible, n)
	}

	slices.SortFunc(visible, func(a, b *types.Node) int {
		return strings.Compare(a.Name, b.Name)
	})
	return visible, nil
}

// lookup resolves a slash separated path to a node
func (t *treeFS) lookup(op, name string) (*types.Node, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	current := t.root()
	if name == "." {
		return current, nil
	}

	for _, segment := range strings.Split(name, "/") {
		if !current.IsFolder() {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		children, err := t.children(current)
		if err != nil {
			return nil, &fs.PathError{Op: op, Path: name, Err: err}
		}
		i := slices.IndexFunc(children, func(n *types.Node) bool { return n.Name == segment })
		if i < 0 {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		current = children[i]
	}
	return current, nil
}

func (t *treeFS) entries(folder *types.Node) ([]fs.DirEntry, error) {
	children, err := t.children(folder)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(children))
	for _, c := range children {
		entries = append(entries, &nodeDirEntry{node: c})
	}
	return entries, nil
}

// Open opens a file or folder by path
func (t *treeFS) Open(name string) (fs.File, error) {
	node, err := t.lookup("open", name)
	if err != nil {
		return nil, err
	}

	if node.IsFolder() {
		entries, err := t.entries(node)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &nodeDir{node: node, entries: entries}, nil
	}

	data, _, err := t.session.svc.blobs.Get(t.ctx, node.StoragePath)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &nodeFile{node: node, data: data}, nil
}

// ReadDir lists a folder in name order
func (t *treeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	node, err := t.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !node.IsFolder() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	entries, err := t.entries(node)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return entries, nil
}

// Stat describes a node without fetching its content
func (t *treeFS) Stat(name string) (fs.FileInfo, error) {
	node, err := t.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return &nodeFileInfo{node: node}, nil
}
