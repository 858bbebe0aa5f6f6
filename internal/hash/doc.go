// Package hash provides the checksum used for stored block payloads.
//
// Payloads written by the codec package carry a CRC32-Castagnoli (CRC32C)
// of their stored bytes, so a block corrupted in an object store is
// reported instead of being served as data:
//
//	sum := hash.CRC32C(data)
//
// Go's crc32 package uses SSE4.2 or the ARM CRC extension when present.
package hash
