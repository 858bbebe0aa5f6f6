package mmap

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Mapping is a read-write, shared memory mapping of a fixed-size file.
// Stores to Bytes() reach the file; Flush makes them durable.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	f      *os.File
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
	flush func([]byte) error
}

// OpenFile maps the file at path read-write, creating it if necessary.
// The file is grown to size bytes if it is smaller; it is never shrunk.
func OpenFile(path string, size int64) (*Mapping, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("mmap: grow %s to %d bytes: %w", path, size, err)
		}
	} else {
		size = fi.Size()
	}

	m := &Mapping{size: int(size), f: f}
	if size == 0 {
		return m, nil
	}

	data, unmapFunc, flushFunc, err := osMap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}
	m.data = data
	m.unmap = unmapFunc
	m.flush = flushFunc
	return m, nil
}

// Close unmaps the memory and closes the file. It is idempotent.
// Close does not flush; call Flush first for durability.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	var err error
	if m.unmap != nil && m.data != nil {
		err = m.unmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}

// Flush synchronously writes dirty pages back to the file.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.flush == nil || m.data == nil {
		return nil
	}
	return m.flush(m.data)
}

// Bytes returns the mapped memory.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
