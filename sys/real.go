package sys

import "os"

var _ FileHandle = (*RealFile)(nil)

// RealFile wraps an *os.File to satisfy FileHandle.
type RealFile struct {
	f *os.File
}

func RCreate(sysFile File, name string) (FileHandle, error) {
	return ROpenFile(sysFile, name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func ROpen(sysFile File, name string) (FileHandle, error) {
	return ROpenFile(sysFile, name, os.O_RDONLY, 0)
}

func ROpenFile(sysFile File, name string, flag int, perm os.FileMode) (FileHandle, error) {
	f, err := sysFile.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &RealFile{f: f}, nil
}

func (df *RealFile) Write(p []byte) (int, error) { return df.f.Write(p) }
func (df *RealFile) Read(p []byte) (int, error)  { return df.f.Read(p) }
func (df *RealFile) Stat() (os.FileInfo, error)  { return df.f.Stat() }
func (df *RealFile) Sync() error                 { return df.f.Sync() }
func (df *RealFile) Truncate(size int64) error   { return df.f.Truncate(size) }
func (df *RealFile) Name() string                { return df.f.Name() }
func (df *RealFile) Close() error                { return df.f.Close() }
