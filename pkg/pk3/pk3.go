// Package pk3 provides reading functionality for Quake III pk3 archives.
// A pk3 is a zip file; names are matched case-insensitively with forward slashes.
package pk3

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/ibsp/pkg/encoding"
)

// ErrNotFound is returned by Read for names the archive does not hold.
var ErrNotFound = errors.New("file not found")

// MapDir is the directory maps are stored under.
const MapDir = "maps"

// Archive represents an opened pk3 archive.
type Archive struct {
	path     string
	file     *os.File
	fileList map[string]*zip.File
}

// Entry describes a file in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
	Method           uint16
}

// Open opens a pk3 archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	archive, err := NewArchive(file, info.Size())
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	archive.path = path
	archive.file = file
	return archive, nil
}

// NewArchive reads the central directory of a zip held by r.
// The archive does not own r; Close is a no-op.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	archive := &Archive{fileList: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Later entries with the same normalized name win.
		archive.fileList[encoding.NormalizePath(f.Name)] = f
	}
	return archive, nil
}

// Path returns the file the archive was opened from, if any.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for name := range a.fileList {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(name string) bool {
	_, ok := a.fileList[encoding.NormalizePath(name)]
	return ok
}

// Stat returns the entry for a file.
func (a *Archive) Stat(name string) (Entry, error) {
	f, ok := a.fileList[encoding.NormalizePath(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Entry{
		Name:             encoding.NormalizePath(f.Name),
		CompressedSize:   f.CompressedSize64,
		UncompressedSize: f.UncompressedSize64,
		Method:           f.Method,
	}, nil
}

// Read reads and decompresses a file from the archive.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.fileList[encoding.NormalizePath(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	// ReadAll reaches EOF, which is where the zip reader checks the CRC.
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Maps returns the names of the maps in the archive, without directory or extension.
func (a *Archive) Maps() []string {
	var maps []string
	for _, name := range a.List() {
		dir, file := path.Split(name)
		if dir != MapDir+"/" || path.Ext(file) != ".bsp" {
			continue
		}
		maps = append(maps, strings.TrimSuffix(file, ".bsp"))
	}
	return maps
}

// MapPath returns the archive path of a map name, e.g. "q3dm17" -> "maps/q3dm17.bsp".
func MapPath(name string) string {
	name = encoding.NormalizePath(name)
	if !strings.HasSuffix(name, ".bsp") {
		name += ".bsp"
	}
	if !strings.HasPrefix(name, MapDir+"/") {
		name = MapDir + "/" + name
	}
	return name
}
