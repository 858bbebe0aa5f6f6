// Package mmap provides read-write shared memory mappings of fixed-size files.
//
// # Usage
//
//	m, err := mmap.OpenFile("device.img", 64<<20)
//	if err != nil { ... }
//	defer m.Close()
//
//	copy(m.Bytes()[off:], block) // store goes to the page cache
//	m.Flush()                    // msync(MS_SYNC)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) MAP_SHARED, msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile, FlushViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure
// no goroutine touches Bytes() after Close returns.
package mmap
