package reconcile_test

import (
	"io/fs"
	"os"
	"time"
)

func errNotExist() error {
	return &fs.PathError{Op: "lstat", Path: "x", Err: os.ErrNotExist}
}

type dirInfo struct{}

func (dirInfo) Name() string       { return "w" }
func (dirInfo) Size() int64        { return 0 }
func (dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0755 }
func (dirInfo) ModTime() time.Time { return time.Time{} }
func (dirInfo) IsDir() bool        { return true }
func (dirInfo) Sys() interface{}   { return nil }
