// Package codec encodes block payloads for object-per-block devices.
//
// An encoded payload is self-describing:
//
//	[Compression uint8][UncompressedSize uint32][StoredSize uint32][CRC32C uint32][Data...]
//
// Integers are little-endian. The checksum covers the stored data. When compression does not pay off (the result is
// larger than 90% of the input) the block is stored raw with Compression set
// to None, so readers never need to know the writer's setting.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/blockcache/internal/conv"
	"github.com/hupe1980/blockcache/internal/hash"
)

// Compression identifies a block compression algorithm.
type Compression uint8

const (
	// None stores blocks as-is.
	None Compression = 0
	// LZ4 uses LZ4 block compression (fast, good for hot data).
	LZ4 Compression = 1
	// Zstd uses Zstandard (better ratio, good for cold data).
	Zstd Compression = 2
)

const headerSize = 13

var (
	// ErrCorrupt is returned when a payload cannot be decoded.
	ErrCorrupt = errors.New("codec: corrupt payload")
	// ErrSizeMismatch is returned when a payload does not decode to the destination size.
	ErrSizeMismatch = errors.New("codec: decoded size mismatch")
	// ErrChecksum is returned when the stored data does not match its checksum.
	ErrChecksum = errors.New("codec: checksum mismatch")
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression returns the compression with the given stable name.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, fmt.Errorf("codec: unknown compression %q", name)
	}
}

// Encode compresses block with c and prepends the payload header.
func Encode(c Compression, block []byte) ([]byte, error) {
	var (
		stored []byte
		err    error
	)
	switch c {
	case None:
	case LZ4:
		stored, err = compressLZ4(block)
	case Zstd:
		stored = compressZstd(block)
	default:
		return nil, fmt.Errorf("codec: unknown compression %d", uint8(c))
	}
	if err != nil {
		return nil, err
	}

	if len(stored) == 0 || float64(len(stored)) > float64(len(block))*0.9 {
		c, stored = None, block
	}

	rawSize, err := conv.IntToUint32(len(block))
	if err != nil {
		return nil, fmt.Errorf("codec: block size: %w", err)
	}
	storedSize, err := conv.IntToUint32(len(stored))
	if err != nil {
		return nil, fmt.Errorf("codec: stored size: %w", err)
	}

	out := make([]byte, headerSize+len(stored))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], rawSize)
	binary.LittleEndian.PutUint32(out[5:], storedSize)
	binary.LittleEndian.PutUint32(out[9:], hash.CRC32C(stored))
	copy(out[headerSize:], stored)
	return out, nil
}

// Decode decodes payload into dst, which must be exactly the uncompressed size.
func Decode(dst, payload []byte) error {
	if len(payload) < headerSize {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(payload))
	}
	c := Compression(payload[0])
	rawSize := binary.LittleEndian.Uint32(payload[1:])
	storedSize := binary.LittleEndian.Uint32(payload[5:])
	sum := binary.LittleEndian.Uint32(payload[9:])

	if n, err := conv.Uint32ToInt(rawSize); err != nil || n != len(dst) {
		return fmt.Errorf("%w: payload holds %d bytes, want %d", ErrSizeMismatch, rawSize, len(dst))
	}
	if uint32(len(payload)-headerSize) < storedSize {
		return fmt.Errorf("%w: truncated data", ErrCorrupt)
	}
	data := payload[headerSize : headerSize+int(storedSize)]
	if hash.CRC32C(data) != sum {
		return ErrChecksum
	}

	switch c {
	case None:
		if len(data) != len(dst) {
			return fmt.Errorf("%w: raw block of %d bytes, want %d", ErrSizeMismatch, len(data), len(dst))
		}
		copy(dst, data)
		return nil
	case LZ4:
		return decompressLZ4(dst, data)
	case Zstd:
		return decompressZstd(dst, data)
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrCorrupt, uint8(c))
	}
}
