// Package fs provides the file abstraction behind blockstore.FileDevice.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with positional read/write and sync
//   - [FileSystem]: opens, stats and removes files
//
// # Implementations
//
//   - [LocalFS]: the os package; Sync uses fdatasync on Linux
//   - [FaultyFS]: test utility for fault injection (failed writes, reads, syncs)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("device.bin", fs.Fault{FailAfterBytes: 4096})
//
// Operations take no context.Context: local file calls cannot be
// interrupted at the syscall level. Slow remote stores live in
// blockstore/object, which is context-aware.
package fs
