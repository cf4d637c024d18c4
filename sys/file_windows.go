// file_windows.go
//go:build windows

package sys

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// windowsFile implements File for Windows, using CreateFile with
// FILE_SHARE_DELETE so an active segment can still be renamed/purged by
// another process while this one holds it open.
type windowsFile struct{}

// NewFile returns the platform-specific File implementation.
func NewFile() File {
	return &windowsFile{}
}

func (wfo *windowsFile) Create(name string) (*os.File, error) {
	return wfo.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (wfo *windowsFile) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	var access uint32
	var creationDisposition uint32
	var shareMode uint32 = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE | windows.FILE_SHARE_DELETE

	if flag&os.O_RDWR != 0 {
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
	} else if flag&os.O_WRONLY != 0 {
		access = windows.GENERIC_WRITE
	} else {
		access = windows.GENERIC_READ
	}

	if flag&os.O_CREATE != 0 {
		if flag&os.O_EXCL != 0 {
			creationDisposition = windows.CREATE_NEW
		} else {
			creationDisposition = windows.OPEN_ALWAYS
		}
	} else {
		creationDisposition = windows.OPEN_EXISTING
	}

	if flag&os.O_TRUNC != 0 {
		if creationDisposition == windows.OPEN_EXISTING {
			creationDisposition = windows.TRUNCATE_EXISTING
		} else {
			creationDisposition = windows.CREATE_ALWAYS
		}
	}

	pathp, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateFile(
		pathp,
		access,
		shareMode,
		nil,
		creationDisposition,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			if errno == windows.ERROR_FILE_NOT_FOUND {
				return nil, os.ErrNotExist
			}
			if errno == windows.ERROR_ACCESS_DENIED {
				return nil, fmt.Errorf("windows CreateFile failed for %s: access is denied: %w", name, err)
			}
		}
		return nil, fmt.Errorf("windows CreateFile failed for %s: %w", name, err)
	}

	file := os.NewFile(uintptr(handle), name)

	if flag&os.O_APPEND != 0 {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			file.Close()
			return nil, fmt.Errorf("seek to end for append on %s: %w", name, err)
		}
	}

	return file, nil
}

func (wfo *windowsFile) Open(name string) (*os.File, error) {
	return wfo.OpenFile(name, os.O_RDONLY, 0)
}
