package bsp

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Source yields bounded byte ranges of a map file.
type Source struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer
}

// Open opens a map file for reading.
// The caller must Close the source.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioError(LumpNone, -1, fmt.Errorf("opening file: %w", err))
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ioError(LumpNone, -1, fmt.Errorf("stat %s: %w", path, err))
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, ioError(LumpNone, -1, fmt.Errorf("%s is not a regular file", path))
	}

	return &Source{r: file, size: info.Size(), closer: file}, nil
}

// NewSource wraps an in-memory or otherwise random-access reader of known size.
func NewSource(r io.ReaderAt, size int64) *Source {
	return &Source{r: r, size: size}
}

// NewBytesSource wraps a byte slice.
func NewBytesSource(data []byte) *Source {
	return NewSource(bytes.NewReader(data), int64(len(data)))
}

// Size returns the total size in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// ReadAt returns exactly length bytes starting at offset.
func (s *Source) ReadAt(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > s.size {
		return nil, &LoadError{
			Kind:   KindBounds,
			Lump:   LumpNone,
			Offset: offset,
			Index:  -1,
			Err:    fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfFile, offset, offset+length, s.size),
		}
	}

	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}
	n, err := s.r.ReadAt(buf, offset)
	if n == len(buf) {
		// io.ReaderAt may report io.EOF together with a full read at end of file.
		return buf, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, ioError(LumpNone, offset, fmt.Errorf("short read %d of %d bytes: %w", n, length, err))
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
