package blockcache

// segment is the part of a byte range that falls into a single block.
type segment struct {
	block  int64 // block number
	within int   // offset inside the block
	pos    int   // offset inside the caller's buffer
	n      int
}

// forEachSegment splits [off, off+length) at block boundaries and calls fn
// for each piece in ascending order, stopping at the first error.
func forEachSegment(off int64, length, blockSize int, fn func(s segment) error) error {
	bs := int64(blockSize)
	for pos := 0; pos < length; {
		o := off + int64(pos)
		s := segment{
			block:  o / bs,
			within: int(o % bs),
			pos:    pos,
		}
		s.n = min(length-pos, blockSize-s.within)
		if err := fn(s); err != nil {
			return err
		}
		pos += s.n
	}
	return nil
}
