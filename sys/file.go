package sys

import (
	"io"
	"os"
	"sync/atomic"
)

// fileWrapper is a stable concrete type used to store the File interface
// inside an atomic.Value. atomic.Value requires that all stored values
// have the same concrete type; wrapping the interface in this small
// struct lets us swap platform implementations safely.
type fileWrapper struct {
	f File
}

var defaultFile atomic.Value // stores fileWrapper
var debugMode atomic.Bool

// File abstracts platform-specific file opening so logfileset can be
// pointed at either the real filesystem or an instrumented one in tests.
type File interface {
	Create(name string) (*os.File, error)
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
}

// FileHandle is the minimal surface logfileset and recovery.Writer need
// from an open segment file: sequential read/write plus the bits of
// metadata the tail scanner and test fixtures rely on (size, truncation).
type FileHandle interface {
	io.ReadWriteCloser

	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
	Name() string
}

func init() {
	debugMode.Store(false)
	defaultFile.Store(fileWrapper{f: NewFile()})
}

// SetDefaultFile overrides the platform File implementation used by the
// package-level Create/Open/OpenFile helpers. The module's own tests do
// not call it: they simulate crashes by truncating real segment files
// through logfileset's Truncate.
func SetDefaultFile(file File) {
	defaultFile.Store(fileWrapper{f: file})
}

// SetDebugMode switches Create/Open/OpenFile to return a DebugFile, which
// logs every open/close through slog. Useful while chasing a leaked
// segment handle during development; never enabled in production code.
func SetDebugMode(mode bool) {
	debugMode.Store(mode)
}

func currentFile() (File, error) {
	p := defaultFile.Load()
	fw, ok := p.(fileWrapper)
	if !ok || fw.f == nil {
		return nil, os.ErrInvalid
	}
	return fw.f, nil
}

// Create opens name for writing, truncating it first, mirroring os.Create.
func Create(name string) (FileHandle, error) {
	file, err := currentFile()
	if err != nil {
		return nil, err
	}
	if debugMode.Load() {
		return DCreate(file, name)
	}
	return RCreate(file, name)
}

// Open opens name for reading, mirroring os.Open.
func Open(name string) (FileHandle, error) {
	file, err := currentFile()
	if err != nil {
		return nil, err
	}
	if debugMode.Load() {
		return DOpen(file, name)
	}
	return ROpen(file, name)
}

// OpenFile opens name with the given flag/perm, mirroring os.OpenFile.
func OpenFile(name string, flag int, perm os.FileMode) (FileHandle, error) {
	file, err := currentFile()
	if err != nil {
		return nil, err
	}
	if debugMode.Load() {
		return DOpenFile(file, name, flag, perm)
	}
	return ROpenFile(file, name, flag, perm)
}
