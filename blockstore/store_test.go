package blockstore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/blockcache/internal/fs"
	"github.com/hupe1980/blockcache/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conformance runs the checks every Device implementation must pass.
func conformance(t *testing.T, dev Device) {
	t.Helper()
	ctx := context.Background()

	t.Run("ReadPastEndIsZero", func(t *testing.T) {
		p := bytes.Repeat([]byte{0xff}, 8)
		require.NoError(t, dev.ReadBlock(ctx, p, 64))
		assert.Equal(t, make([]byte, 8), p)
	})

	t.Run("WriteThenRead", func(t *testing.T) {
		require.NoError(t, dev.WriteBlock(ctx, []byte("abcdefgh"), 8))
		p := make([]byte, 8)
		require.NoError(t, dev.ReadBlock(ctx, p, 8))
		assert.Equal(t, "abcdefgh", string(p))

		// Block 0 was never written.
		require.NoError(t, dev.ReadBlock(ctx, p, 0))
		assert.Equal(t, make([]byte, 8), p)
	})

	t.Run("NegativeOffset", func(t *testing.T) {
		err := dev.ReadBlock(ctx, make([]byte, 8), -8)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("SizeAndSync", func(t *testing.T) {
		size, err := dev.Size(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size, int64(16))
		assert.NoError(t, dev.Sync(ctx))
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, dev.ReadBlock(cctx, make([]byte, 8), 0), context.Canceled)
	})
}

func TestFileDevice(t *testing.T) {
	dev, err := OpenFile(filepath.Join(t.TempDir(), "dev.bin"))
	require.NoError(t, err)

	conformance(t, dev)

	size, err := dev.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)

	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.ReadBlock(context.Background(), make([]byte, 8), 0), ErrClosed)
}

func TestFileDevice_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.bin")
	ctx := context.Background()

	dev, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, dev.WriteBlock(ctx, []byte("persist!"), 16))
	require.NoError(t, dev.Sync(ctx))
	require.NoError(t, dev.Close())

	dev, err = OpenFile(path)
	require.NoError(t, err)
	defer dev.Close()

	p := make([]byte, 8)
	require.NoError(t, dev.ReadBlock(ctx, p, 16))
	assert.Equal(t, "persist!", string(p))
	assert.Equal(t, path, dev.Name())
}

func TestFileDevice_InjectedFaults(t *testing.T) {
	ctx := context.Background()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("short.bin", fs.Fault{FailAfterBytes: 8})
	ffs.AddRule("unsynced.bin", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("unreadable.bin", fs.Fault{FailAfterBytes: -1, FailReads: true})
	dir := t.TempDir()

	t.Run("WriteFails", func(t *testing.T) {
		dev, err := openFileFS(ffs, filepath.Join(dir, "short.bin"))
		require.NoError(t, err)
		defer dev.Close()

		require.NoError(t, dev.WriteBlock(ctx, make([]byte, 8), 0))
		assert.ErrorIs(t, dev.WriteBlock(ctx, make([]byte, 8), 8), fs.ErrInjected)
	})

	t.Run("SyncFails", func(t *testing.T) {
		dev, err := openFileFS(ffs, filepath.Join(dir, "unsynced.bin"))
		require.NoError(t, err)
		defer dev.Close()

		require.NoError(t, dev.WriteBlock(ctx, make([]byte, 8), 0))
		assert.ErrorIs(t, dev.Sync(ctx), fs.ErrInjected)
	})

	t.Run("ReadFails", func(t *testing.T) {
		dev, err := openFileFS(ffs, filepath.Join(dir, "unreadable.bin"))
		require.NoError(t, err)
		defer dev.Close()

		assert.ErrorIs(t, dev.ReadBlock(ctx, make([]byte, 8), 0), fs.ErrInjected)
	})
}

func TestMmapDevice(t *testing.T) {
	dev, err := OpenMmap(filepath.Join(t.TempDir(), "dev.bin"), 128)
	require.NoError(t, err)

	conformance(t, dev)

	size, err := dev.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(128), size)

	err = dev.WriteBlock(context.Background(), make([]byte, 8), 128)
	assert.ErrorIs(t, err, ErrOutOfRange)

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.Sync(context.Background()), ErrClosed)
	assert.ErrorIs(t, dev.ReadBlock(context.Background(), make([]byte, 8), 0), ErrClosed)
}

func TestMmapDevice_CloseDuringIO(t *testing.T) {
	ctx := context.Background()
	dev, err := OpenMmap(filepath.Join(t.TempDir(), "dev.bin"), 4096)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 4*100)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			p := make([]byte, 64)
			for i := 0; i < 100; i++ {
				off := int64((w*100+i)%64) * 64
				if i%2 == 0 {
					errs <- dev.WriteBlock(ctx, p, off)
				} else {
					errs <- dev.ReadBlock(ctx, p, off)
				}
			}
		}(w)
	}
	require.NoError(t, dev.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrClosed)
		}
	}
	require.NoError(t, dev.Close())
	_, err = dev.Size(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryDevice(t *testing.T) {
	dev := NewMemoryDevice(nil)
	conformance(t, dev)

	assert.Equal(t, 16, len(dev.Bytes()))
	assert.Equal(t, int64(1), dev.Writes())
	assert.Positive(t, dev.Reads())
	assert.Equal(t, int64(1), dev.Syncs())

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.WriteBlock(context.Background(), make([]byte, 8), 0), ErrClosed)
	// Contents survive Close for inspection.
	assert.Equal(t, "abcdefgh", string(dev.Bytes()[8:]))
}

func TestMemoryDevice_InitialContentsAreCopied(t *testing.T) {
	initial := []byte("12345678")
	dev := NewMemoryDevice(initial)
	initial[0] = 'x'

	p := make([]byte, 4)
	require.NoError(t, dev.ReadBlock(context.Background(), p, 0))
	assert.Equal(t, "1234", string(p))

	// Partial block at the end is zero-padded.
	p = make([]byte, 4)
	require.NoError(t, dev.ReadBlock(context.Background(), p, 6))
	assert.Equal(t, []byte{'7', '8', 0, 0}, p)
}

func TestThrottledDevice(t *testing.T) {
	inner := NewMemoryDevice(nil)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
	dev := NewThrottledDevice(inner, rc)
	assert.Same(t, inner, dev.Unwrap())

	conformance(t, dev)

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, inner.Sync(context.Background()), ErrClosed)
}

func TestThrottledDevice_BlocksWhenBucketIsEmpty(t *testing.T) {
	rc := resource.NewController(resource.Config{
		IOLimitBytesPerSec: 1,
		IOBurstBytes:       8,
	})
	dev := NewThrottledDevice(NewMemoryDevice(nil), rc)

	require.NoError(t, dev.WriteBlock(context.Background(), make([]byte, 8), 0))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, dev.WriteBlock(ctx, make([]byte, 8), 8))
}

func TestThrottledDevice_NilController(t *testing.T) {
	dev := NewThrottledDevice(NewMemoryDevice(nil), nil)
	conformance(t, dev)
}

func TestReadFullAt(t *testing.T) {
	p := []byte("xxxxxx")
	require.NoError(t, ReadFullAt(bytes.NewReader([]byte("abc")), p, 1))
	assert.Equal(t, []byte{'b', 'c', 0, 0, 0, 0}, p)

	err := ReadFullAt(errReaderAt{}, p, 0)
	assert.EqualError(t, err, "boom")
}

type errReaderAt struct{}

func (errReaderAt) ReadAt([]byte, int64) (int, error) { return 0, errors.New("boom") }
