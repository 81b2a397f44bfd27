package common

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Common error types used across filesystem packages
var (
	ErrPathEmpty        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long (max 4096 characters)")
	ErrPathInvalid      = errors.New("path contains invalid characters")
	ErrNotFound         = errors.New("no such file or directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnsupported      = errors.New("operation not supported")
)

const maxPathLength = 4096

// ErrorKind is the coarse class of a failed filesystem call
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindUnsupported
	KindInvalidPath
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnsupported:
		return "unsupported"
	case KindInvalidPath:
		return "invalid_path"
	case KindCanceled:
		return "canceled"
	default:
		return "other"
	}
}

// IOError records a failed filesystem call against one location.
//
// errors.Is matches both the package sentinels (ErrNotFound, ...) and the
// io/fs equivalents for the classified kind, as well as anything the wrapped
// error matches.
type IOError struct {
	Op   string
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	switch target {
	case ErrNotFound, fs.ErrNotExist:
		return e.Kind == KindNotFound
	case ErrPermissionDenied, fs.ErrPermission:
		return e.Kind == KindPermissionDenied
	case ErrUnsupported, errors.ErrUnsupported:
		return e.Kind == KindUnsupported
	}
	return false
}

// NewIOError wraps err for op on url and classifies it. A nil err yields nil.
func NewIOError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) && ioErr.Op == op && ioErr.URL == url {
		return err
	}
	return &IOError{Op: op, URL: url, Kind: Classify(err), Err: err}
}

// Classify maps an error from any provider onto an ErrorKind
func Classify(err error) ErrorKind {
	var ioErr *IOError
	switch {
	case err == nil:
		return KindOther
	case errors.As(err, &ioErr):
		return ioErr.Kind
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, ErrUnsupported), errors.Is(err, errors.ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrPathEmpty), errors.Is(err, ErrPathTooLong), errors.Is(err, ErrPathInvalid):
		return KindInvalidPath
	default:
		return KindOther
	}
}

// IsNotFound reports whether err means the location does not exist
func IsNotFound(err error) bool { return Classify(err) == KindNotFound }

// IsPermissionDenied reports whether err means the location is inaccessible
func IsPermissionDenied(err error) bool { return Classify(err) == KindPermissionDenied }

// ValidatePath rejects paths no provider can address
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathEmpty
	}
	if len(path) > maxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return ErrPathInvalid
	}
	return nil
}

// ValidateContextCancellation checks if context is cancelled and returns appropriate error
func ValidateContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
