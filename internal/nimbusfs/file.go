package nimbusfs

import (
	"io"
	"io/fs"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// nodeFile implements fs.File over content fetched from the blob gateway
type nodeFile struct {
	node   *types.Node
	data   []byte
	offset int64
}

// nodeDir implements fs.ReadDirFile for folders
type nodeDir struct {
	node    *types.Node
	entries []fs.DirEntry
}

func (f *nodeFile) Stat() (fs.FileInfo, error) {
	return &nodeFileInfo{node: f.node}, nil
}

// Read reads up to len(b) bytes from the file
func (f *nodeFile) Read(b []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}

	n := copy(b, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *nodeFile) Close() error {
	return nil
}

func (d *nodeDir) Stat() (fs.FileInfo, error) {
	return &nodeFileInfo{node: d.node}, nil
}

// Read always fails; folders have no content
func (d *nodeDir) Read(b []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.node.Name, Err: fs.ErrInvalid}
}

// ReadDir returns up to n entries in name order. With n <= 0 it returns
// everything that is left and a nil error.
func (d *nodeDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		result := d.entries
		d.entries = nil
		if result == nil {
			result = []fs.DirEntry{}
		}
		return result, nil
	}

	if len(d.entries) == 0 {
		return nil, io.EOF
	}

	count := min(n, len(d.entries))
	result := make([]fs.DirEntry, count)
	copy(result, d.entries[:count])
	d.entries = d.entries[count:]

	return result, nil
}

func (d *nodeDir) Close() error {
	return nil
}
