package calendar

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the narrow filesystem surface the projector writes through. Paths
// are slash-separated and relative to the vault root. The indirection keeps
// the projector testable without touching a disk.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Remove(name string) error
	MkdirAll(name string) error
	Exists(name string) bool
}

// DirFS is the production FS, rooted at a directory on the host filesystem.
type DirFS struct {
	root string
}

// NewDirFS returns an FS rooted at root.
func NewDirFS(root string) *DirFS {
	return &DirFS{root: root}
}

func (d *DirFS) abs(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

func (d *DirFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(d.abs(name))
}

func (d *DirFS) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.abs(name), data, 0644)
}

func (d *DirFS) Remove(name string) error {
	err := os.Remove(d.abs(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *DirFS) MkdirAll(name string) error {
	return os.MkdirAll(d.abs(name), 0755)
}

func (d *DirFS) Exists(name string) bool {
	_, err := os.Stat(d.abs(name))
	return err == nil
}
