// file_unix.go
//go:build unix

package sys

import "os"

// unixFile implements File for Unix-like systems via plain os.* calls.
type unixFile struct{}

// NewFile returns the platform-specific File implementation.
func NewFile() File {
	return &unixFile{}
}

func (ufo *unixFile) Create(name string) (*os.File, error) {
	return os.Create(name)
}

func (ufo *unixFile) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

func (ufo *unixFile) Open(name string) (*os.File, error) {
	return os.Open(name)
}
