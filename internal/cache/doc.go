// Package cache provides the fixed-capacity block pool behind blockcache.Cache.
//
// # Layout
//
// Blocks live in a stable arena of capacity slots that is allocated once and
// never resized, so a *Block stays valid for as long as it is resident.
// Admission order is a ring of slot indices (oldest first) and an index maps
// Key to slot. Neither structure holds positional references into the other,
// so removing a block from the middle of the order (RemoveFunc) cannot
// invalidate any other entry.
//
// # Eviction
//
// The pool itself never evicts. Callers check Full, write back Oldest if it
// is dirty and then call RemoveOldest before Reserve. This keeps all I/O out
// of the pool.
//
// Pool is not safe for concurrent use.
package cache
