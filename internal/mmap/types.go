package mmap

import "errors"

// AccessPattern is an madvise hint for a mapping.
type AccessPattern int

const (
	// AccessNormal removes any earlier hint.
	AccessNormal AccessPattern = iota
	// AccessRandom expects accesses in no particular order, so the kernel
	// skips read-ahead.
	AccessRandom
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is negative.
	ErrInvalidSize = errors.New("mmap: invalid file size")
)
