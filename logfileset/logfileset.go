// Package logfileset enumerates WAL segment files on disk and gives
// ordered, positioned access to them. It knows nothing about entry
// framing (that is logformat's job) — only file names, sizes, and
// sequential byte channels.
package logfileset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/waldb/logtail/sys"
)

// LogFileSet exposes the segment files under Dir named "<Prefix>.<version>"
// as an ordered sequence by version.
type LogFileSet struct {
	Dir    string
	Prefix string
}

// New returns a LogFileSet rooted at dir using the given segment prefix.
func New(dir, prefix string) *LogFileSet {
	return &LogFileSet{Dir: dir, Prefix: prefix}
}

func (fs *LogFileSet) fileName(version uint64) string {
	return fmt.Sprintf("%s.%d", fs.Prefix, version)
}

func (fs *LogFileSet) path(version uint64) string {
	return filepath.Join(fs.Dir, fs.fileName(version))
}

// parseVersion extracts the version from a segment file name, or reports
// ok=false if name does not match "<Prefix>.<version>" in canonical
// decimal form (no leading zeros, no sign).
func (fs *LogFileSet) parseVersion(name string) (version uint64, ok bool) {
	suffix := strings.TrimPrefix(name, fs.Prefix+".")
	if suffix == name || suffix == "" {
		return 0, false
	}
	if suffix != "0" && strings.HasPrefix(suffix, "0") {
		return 0, false
	}
	v, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// versions lists every segment version present on disk, ascending.
func (fs *LogFileSet) versions() ([]uint64, error) {
	entries, err := os.ReadDir(fs.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("logfileset: read dir %s: %w", fs.Dir, err)
	}

	var versions []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if v, ok := fs.parseVersion(entry.Name()); ok {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// AnyFiles reports whether any segment file exists.
func (fs *LogFileSet) AnyFiles() (bool, error) {
	versions, err := fs.versions()
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// HighestVersion returns the greatest segment version present, and false
// if the set is empty.
func (fs *LogFileSet) HighestVersion() (uint64, bool, error) {
	versions, err := fs.versions()
	if err != nil {
		return 0, false, err
	}
	if len(versions) == 0 {
		return 0, false, nil
	}
	return versions[len(versions)-1], true, nil
}

// LowestVersion returns the smallest segment version present, and false
// if the set is empty.
func (fs *LogFileSet) LowestVersion() (uint64, bool, error) {
	versions, err := fs.versions()
	if err != nil {
		return 0, false, err
	}
	if len(versions) == 0 {
		return 0, false, nil
	}
	return versions[0], true, nil
}

// PreviousVersion returns the greatest existing segment version strictly
// less than version, used by TailScanner to descend past non-contiguous
// gaps in the segment sequence.
func (fs *LogFileSet) PreviousVersion(version uint64) (uint64, bool, error) {
	versions, err := fs.versions()
	if err != nil {
		return 0, false, err
	}
	var best uint64
	found := false
	for _, v := range versions {
		if v < version && (!found || v > best) {
			best, found = v, true
		}
	}
	return best, found, nil
}

// Size returns the current size in bytes of the given segment.
func (fs *LogFileSet) Size(version uint64) (int64, error) {
	info, err := os.Stat(fs.path(version))
	if err != nil {
		return 0, fmt.Errorf("logfileset: stat segment %d: %w", version, err)
	}
	return info.Size(), nil
}

// ReadChannel is a positioned, buffered, sequential byte source over one
// segment file.
type ReadChannel struct {
	*bufio.Reader
	handle sys.FileHandle
}

// Close releases the underlying file handle.
func (c *ReadChannel) Close() error {
	return c.handle.Close()
}

// Open opens the given segment for sequential reading from offset 0. A
// missing segment is reported as an error the caller can test with
// errors.Is(err, os.ErrNotExist) — LogFileSet's job is only to say which versions exist,
// not to paper over one going missing between listing and opening.
func (fs *LogFileSet) Open(version uint64) (*ReadChannel, error) {
	handle, err := sys.Open(fs.path(version))
	if err != nil {
		return nil, fmt.Errorf("logfileset: open segment %d: %w", version, err)
	}
	return &ReadChannel{Reader: bufio.NewReader(handle), handle: handle}, nil
}

// WriteChannel is a sequential byte sink for a newly created segment,
// used by recovery.Writer and the cmd/logtail seed subcommand — never by
// the scanner itself.
type WriteChannel struct {
	*bufio.Writer
	handle sys.FileHandle
}

// Sync flushes buffered bytes and fsyncs the underlying file.
func (c *WriteChannel) Sync() error {
	if err := c.Writer.Flush(); err != nil {
		return err
	}
	return c.handle.Sync()
}

// Close flushes and closes the channel.
func (c *WriteChannel) Close() error {
	if err := c.Writer.Flush(); err != nil {
		c.handle.Close()
		return err
	}
	return c.handle.Close()
}

// Create creates a new segment file for the given version, truncating any
// existing file of that version.
func (fs *LogFileSet) Create(version uint64) (*WriteChannel, error) {
	if err := os.MkdirAll(fs.Dir, 0755); err != nil {
		return nil, fmt.Errorf("logfileset: create dir %s: %w", fs.Dir, err)
	}
	handle, err := sys.Create(fs.path(version))
	if err != nil {
		return nil, fmt.Errorf("logfileset: create segment %d: %w", version, err)
	}
	return &WriteChannel{Writer: bufio.NewWriter(handle), handle: handle}, nil
}

// Truncate shortens the given segment to newSize bytes. Not used by the
// scanner; the test suite relies on it to simulate a crash mid-write.
func (fs *LogFileSet) Truncate(version uint64, newSize int64) error {
	handle, err := sys.OpenFile(fs.path(version), os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("logfileset: open segment %d for truncate: %w", version, err)
	}
	defer handle.Close()
	if err := handle.Truncate(newSize); err != nil {
		return fmt.Errorf("logfileset: truncate segment %d: %w", version, err)
	}
	return nil
}
