package blockcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for negative offsets, non-positive
	// sizes and seeks before the start of a file.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageRead is matched by every error caused by a failed block load.
	ErrStorageRead = errors.New("storage read failure")

	// ErrStorageWrite is matched by every error caused by a failed write-back.
	ErrStorageWrite = errors.New("storage write failure")

	// ErrClosed is returned by operations on a closed Cache or File.
	ErrClosed = errors.New("closed")
)

// Op names the device operation behind a StorageError.
type Op string

const (
	// OpRead is a block load.
	OpRead Op = "read"
	// OpWrite is a block write-back.
	OpWrite Op = "write"
)

// StorageError reports a failed device transfer of one block.
//
// It matches ErrStorageRead or ErrStorageWrite (depending on Op) as well as
// the device error with errors.Is and errors.As.
type StorageError struct {
	Op     Op
	Block  int64
	Offset int64
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s block %d at offset %d: %v", e.Op, e.Block, e.Offset, e.Err)
}

func (e *StorageError) Unwrap() []error {
	if e.Op == OpWrite {
		return []error{ErrStorageWrite, e.Err}
	}
	return []error{ErrStorageRead, e.Err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
