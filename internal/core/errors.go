package core

import (
	"errors"
	"fmt"

	"psitool/internal/rvuid"
)

var (
	// ErrIO marks a failed read, write or path resolution.
	ErrIO = errors.New("io error")
	// ErrEmptyPool means no selected pool has an eligible target.
	ErrEmptyPool = errors.New("empty pool")
	// ErrNotFound marks a requested pool or identifier that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFormat and ErrInvariant are shared with the identifier codec so a
	// parse failure deep in a cache file reports the same kind as one raised
	// here.
	ErrFormat    = rvuid.ErrFormat
	ErrInvariant = rvuid.ErrInvariant
)

// Error is a classified failure. Kind is one of the sentinel errors above;
// Err, when set, is the underlying cause.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	where := e.Op
	if e.Path != "" {
		if where != "" {
			where += " "
		}
		where += e.Path
	}
	var msg string
	switch {
	case e.Err == nil:
		msg = e.Kind.Error()
	case errors.Is(e.Err, e.Kind):
		msg = e.Err.Error()
	default:
		msg = fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
	}
	if where == "" {
		return msg
	}
	return where + ": " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func ioError(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

func formatError(op, path string, err error) error {
	return &Error{Kind: ErrFormat, Op: op, Path: path, Err: err}
}

func emptyPoolError(path string) error {
	return &Error{Kind: ErrEmptyPool, Op: "select", Path: path,
		Err: errors.New("no eligible JPG/JPEG/SVG or TARGET files")}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Err: fmt.Errorf(format, args...)}
}

// IOError classifies err as an I/O failure of op on path.
func IOError(op, path string, err error) error { return ioError(op, path, err) }

// FormatError classifies err as malformed content read by op from path.
func FormatError(op, path string, err error) error { return formatError(op, path, err) }

// NotFoundf reports a named thing that does not exist.
func NotFoundf(format string, args ...any) error { return notFoundf(format, args...) }
