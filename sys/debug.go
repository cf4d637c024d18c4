package sys

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var _ FileHandle = (*DebugFile)(nil)
var nextID atomic.Uint64

var openHandles sync.Map // id -> file name, used by ListOpenHandles

// DebugFile wraps an *os.File and logs every open/close through slog. It
// is selected by SetDebugMode(true); never used outside tests.
type DebugFile struct {
	id     uint64
	f      *os.File
	logger *slog.Logger
}

func DCreate(sysFile File, name string) (FileHandle, error) {
	return DOpenFile(sysFile, name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func DOpen(sysFile File, name string) (FileHandle, error) {
	return DOpenFile(sysFile, name, os.O_RDONLY, 0)
}

func DOpenFile(sysFile File, name string, flag int, perm os.FileMode) (FileHandle, error) {
	logger := slog.Default().With("component", "sys.DebugFile")

	f, err := sysFile.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	id := nextID.Add(1)
	logger = logger.With("id", id, "file", name)
	logger.Debug("opening segment handle")
	openHandles.Store(id, f.Name())

	return &DebugFile{id: id, f: f, logger: logger}, nil
}

func (df *DebugFile) Write(p []byte) (int, error)    { return df.f.Write(p) }
func (df *DebugFile) Read(p []byte) (int, error)     { return df.f.Read(p) }
func (df *DebugFile) Stat() (os.FileInfo, error)     { return df.f.Stat() }
func (df *DebugFile) Sync() error                    { return df.f.Sync() }
func (df *DebugFile) Truncate(size int64) error      { return df.f.Truncate(size) }
func (df *DebugFile) Name() string                   { return df.f.Name() }

func (df *DebugFile) Close() error {
	df.logger.Debug("closing segment handle")
	openHandles.Delete(df.id)
	return df.f.Close()
}

// ListOpenHandles prints every segment handle DebugFile has opened but not
// yet closed. Handy when a test leaks a reader across segment boundaries.
func ListOpenHandles() {
	fmt.Println("open segment handles:")
	openHandles.Range(func(key, value any) bool {
		fmt.Printf("  id=%v file=%v\n", key, value)
		return true
	})
}
