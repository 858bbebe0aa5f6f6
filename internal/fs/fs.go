package fs

import (
	"io"
	"os"
)

// File is an open file addressed by offset.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	// Sync flushes file data to stable storage.
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts the file operations block devices need.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &localFile{File: f}, nil
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// localFile syncs with the cheapest call that makes data durable on the
// platform.
type localFile struct {
	*os.File
}

func (f *localFile) Sync() error {
	return datasync(f.File)
}
