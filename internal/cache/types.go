package cache

// Key identifies a resident block: the handle it was loaded from and its
// block number within that handle.
type Key[H comparable] struct {
	Handle H
	Number int64
}

// Block is a cached, fixed-size unit of data.
//
// Data always has exactly the pool's block size. The pool owns Data; callers
// must not retain it beyond a single operation.
type Block[H comparable] struct {
	Key   Key[H]
	Data  []byte
	Dirty bool

	slot     int
	resident bool
}
