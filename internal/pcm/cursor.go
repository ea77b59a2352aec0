package pcm

import "sync/atomic"

// Cursor reads a buffer forward as interleaved stereo. Read is called from
// one goroutine; Position and Finished may be read from any.
type Cursor struct {
	buf      *Buffer
	pos      atomic.Int64
	finished atomic.Bool
}

// NewCursor starts reading buf at frame start.
func NewCursor(buf *Buffer, start int64) *Cursor {
	c := &Cursor{buf: buf}
	start = max(0, min(start, int64(buf.Frames())))
	c.pos.Store(start)
	return c
}

// Read fills dst with the next frames and zero-pads past the end. It
// returns the absolute frame index of dst[0] and the number of frames that
// came from the buffer.
func (c *Cursor) Read(dst []float32) (start int64, n int) {
	start = c.pos.Load()
	n = c.buf.InterleaveStereo(dst, int(start))
	clear(dst[2*n:])
	c.pos.Store(start + int64(n))
	if n < len(dst)/2 {
		c.finished.Store(true)
	}
	return start, n
}

// Position returns the next frame to be read.
func (c *Cursor) Position() int64 { return c.pos.Load() }

// Finished reports whether a Read has run past the end of the buffer.
func (c *Cursor) Finished() bool { return c.finished.Load() }

func (c *Cursor) Buffer() *Buffer { return c.buf }
