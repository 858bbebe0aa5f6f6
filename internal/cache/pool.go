package cache

import "fmt"

// Pool is a FIFO-ordered, fixed-capacity set of blocks.
type Pool[H comparable] struct {
	blockSize int
	slots     []Block[H]
	free      []int

	// ring holds slot indices in admission order starting at head.
	ring []int
	head int
	n    int

	index map[Key[H]]int
}

// NewPool creates a pool of capacity blocks of blockSize bytes each.
func NewPool[H comparable](capacity, blockSize int) (*Pool[H], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache: capacity must be positive, got %d", capacity)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("cache: block size must be positive, got %d", blockSize)
	}

	p := &Pool[H]{
		blockSize: blockSize,
		slots:     make([]Block[H], capacity),
		free:      make([]int, 0, capacity),
		ring:      make([]int, capacity),
		index:     make(map[Key[H]]int, capacity),
	}
	// Hand out low slots first.
	for i := capacity - 1; i >= 0; i-- {
		p.slots[i].slot = i
		p.free = append(p.free, i)
	}
	return p, nil
}

// Len returns the number of resident blocks.
func (p *Pool[H]) Len() int { return p.n }

// Cap returns the maximum number of resident blocks.
func (p *Pool[H]) Cap() int { return len(p.slots) }

// BlockSize returns the size of every block buffer.
func (p *Pool[H]) BlockSize() int { return p.blockSize }

// Full reports whether an eviction is required before the next Reserve.
func (p *Pool[H]) Full() bool { return len(p.free) == 0 }

// Lookup returns the resident block for key. It does not change the order.
func (p *Pool[H]) Lookup(key Key[H]) (*Block[H], bool) {
	slot, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return &p.slots[slot], true
}

// Oldest returns the block admitted first.
func (p *Pool[H]) Oldest() (*Block[H], bool) {
	if p.n == 0 {
		return nil, false
	}
	return &p.slots[p.ring[p.head]], true
}

// RemoveOldest removes the block admitted first, dirty or not.
func (p *Pool[H]) RemoveOldest() {
	if p.n == 0 {
		return
	}
	slot := p.ring[p.head]
	p.head = (p.head + 1) % len(p.ring)
	p.n--
	p.discard(slot)
}

// Reserve takes a free slot and returns its zeroed block. The block is not
// resident until Commit. Reserve returns nil when the pool is Full.
func (p *Pool[H]) Reserve() *Block[H] {
	if len(p.free) == 0 {
		return nil
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	b := &p.slots[slot]
	if b.Data == nil {
		b.Data = make([]byte, p.blockSize)
	} else {
		clear(b.Data)
	}
	b.Dirty = false
	return b
}

// Commit makes a reserved block resident under key as the newest block.
func (p *Pool[H]) Commit(b *Block[H], key Key[H]) {
	b.Key = key
	b.resident = true
	p.ring[(p.head+p.n)%len(p.ring)] = b.slot
	p.n++
	p.index[key] = b.slot
}

// Release returns a reserved, uncommitted block to the free list.
func (p *Pool[H]) Release(b *Block[H]) {
	if b.resident {
		return
	}
	b.Dirty = false
	p.free = append(p.free, b.slot)
}

// RemoveFunc removes every block for which fn returns true and reports how
// many were removed. The survivors keep their relative order.
func (p *Pool[H]) RemoveFunc(fn func(b *Block[H]) bool) int {
	kept, removed := 0, 0
	for i := 0; i < p.n; i++ {
		s := p.ring[(p.head+i)%len(p.ring)]
		if fn(&p.slots[s]) {
			p.discard(s)
			removed++
			continue
		}
		p.ring[(p.head+kept)%len(p.ring)] = s
		kept++
	}
	p.n = kept
	return removed
}

// Each calls fn for every resident block from oldest to newest and stops at
// the first error. fn must not add or remove blocks.
func (p *Pool[H]) Each(fn func(b *Block[H]) error) error {
	for i := 0; i < p.n; i++ {
		if err := fn(&p.slots[p.ring[(p.head+i)%len(p.ring)]]); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every block without writing anything back.
func (p *Pool[H]) Reset() {
	for p.n > 0 {
		p.RemoveOldest()
	}
}

func (p *Pool[H]) discard(slot int) {
	b := &p.slots[slot]
	delete(p.index, b.Key)
	var zero Key[H]
	b.Key = zero
	b.Dirty = false
	b.resident = false
	p.free = append(p.free, slot)
}
