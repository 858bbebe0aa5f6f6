//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, func([]byte) error, error) {
	if size == 0 {
		return nil, nil, nil, nil
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE, 0, 0, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	// The view keeps its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	unmap := func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}
	flush := func([]byte) error {
		if err := windows.FlushViewOfFile(addr, uintptr(size)); err != nil {
			return err
		}
		return windows.FlushFileBuffers(windows.Handle(f.Fd()))
	}
	return data, unmap, flush, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no madvise equivalent; the hint is dropped.
	_ = data
	_ = pattern
	return nil
}
