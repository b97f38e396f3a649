package repair

// Buffer is an owned, fixed-length module image. It is mutated only by
// in-place overwrites through Neutralize.
type Buffer struct {
	data []byte
}

// NewBuffer copies data into a new Buffer.
func NewBuffer(data []byte) *Buffer {
	owned := make([]byte, len(data))
	copy(owned, data)
	return &Buffer{data: owned}
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the current contents. Callers must not modify the slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// At returns the byte at index i.
func (b *Buffer) At(i int) byte {
	return b.data[i]
}
