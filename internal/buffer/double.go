// Package buffer provides memory-managed buffering for the copy pipeline.
package buffer

// Double owns exactly two same-size chunk buffers. One is filled by the
// next read while the other is drained by the in-flight write wave.
// Not goroutine-safe: the pipeline's control goroutine is the only caller.
type Double struct {
	bufs [2][]byte
	fill int // index of the buffer the next read may fill
}

// NewDouble allocates two buffers of size bytes each.
func NewDouble(size int) *Double {
	if size <= 0 {
		size = 4096
	}
	return &Double{
		bufs: [2][]byte{make([]byte, size), make([]byte, size)},
	}
}

// Fill returns the buffer that is not referenced by any pending write.
func (d *Double) Fill() []byte {
	return d.bufs[d.fill]
}

// Swap hands the first n bytes of the fill buffer over to the writers and
// makes the other buffer the new fill buffer. The caller must have waited
// for every write still referencing that other buffer.
func (d *Double) Swap(n int) []byte {
	drain := d.bufs[d.fill][:n]
	d.fill ^= 1
	return drain
}

// Size returns the capacity of each buffer.
func (d *Double) Size() int {
	return len(d.bufs[0])
}
