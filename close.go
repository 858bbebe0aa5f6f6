package blockcache

import (
	"context"
	"errors"
)

// Close writes back every dirty block, empties the cache and returns its
// memory to the resource controller. Write-back failures do not stop the
// remaining blocks from being written; they are joined into the returned
// error and the affected modifications are lost.
func (c *Cache) Close(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true

	var errs []error
	dropped := 0
	_ = c.pool.Each(func(b *block) error {
		if !b.Dirty {
			return nil
		}
		if err := c.writeBack(context.WithoutCancel(ctx), b); err != nil {
			errs = append(errs, err)
			dropped++
		}
		return nil
	})
	c.pool.Reset()
	c.opts.resources.ReleaseMemory(c.reserved)

	err := errors.Join(errs...)
	c.opts.logger.LogClose(ctx, dropped, err)
	return err
}
