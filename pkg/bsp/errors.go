package bsp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a load failure.
type ErrorKind int

const (
	KindIO     ErrorKind = iota + 1 // File missing, unreadable or short read
	KindFormat                      // Bad magic, bad version or misaligned lump
	KindBounds                      // Range outside the file or outside a target collection
)

// String returns the kind name used in error messages.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindFormat:
		return "format error"
	case KindBounds:
		return "bounds error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Kind sentinels. A *LoadError matches exactly one of them with errors.Is.
var (
	ErrIO     = errors.New("bsp: io error")
	ErrFormat = errors.New("bsp: format error")
	ErrBounds = errors.New("bsp: bounds error")
)

// Detail errors wrapped by a *LoadError.
var (
	ErrBadMagic       = errors.New("bad magic: expected 'IBSP'")
	ErrBadVersion     = errors.New("bad version")
	ErrMisalignedLump = errors.New("misaligned lump")
	ErrOutOfFile      = errors.New("range exceeds file size")
	ErrIndexRange     = errors.New("index out of range")
)

// LoadError is the single error returned by a failed load.
// Lump is LumpNone for failures in the header or byte source itself.
type LoadError struct {
	Kind   ErrorKind
	Lump   Lump
	Offset int64 // Byte offset involved, -1 if not applicable
	Index  int   // Record index involved, -1 if not applicable
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Kind.String()
	if e.Lump != LumpNone {
		msg += " in " + e.Lump.String() + " lump"
	}
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at record %d", e.Index)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the detail error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel of the error.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrBounds:
		return e.Kind == KindBounds
	}
	return false
}

func ioError(lump Lump, offset int64, err error) *LoadError {
	return &LoadError{Kind: KindIO, Lump: lump, Offset: offset, Index: -1, Err: err}
}

func formatError(lump Lump, err error) *LoadError {
	return &LoadError{Kind: KindFormat, Lump: lump, Offset: -1, Index: -1, Err: err}
}

func boundsError(lump Lump, index int, err error) *LoadError {
	return &LoadError{Kind: KindBounds, Lump: lump, Offset: -1, Index: index, Err: err}
}

// withLump attaches a lump to an error raised below the lump layer.
func withLump(err error, lump Lump) error {
	var le *LoadError
	if errors.As(err, &le) && le.Lump == LumpNone {
		cp := *le
		cp.Lump = lump
		return &cp
	}
	return err
}
