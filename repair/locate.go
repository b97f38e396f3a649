package repair

import (
	"github.com/wippyai/wasm-repair/errors"
)

// Locate scans backward from offset, inclusive, for the signature's marker
// byte and returns its index. It does not modify data.
func (s Signature) Locate(data []byte, offset int) (int, error) {
	if offset < 0 || offset >= len(data) {
		return 0, errors.OffsetOutOfRange(offset, len(data))
	}

	start := offset
	for start >= 0 && data[start] != s.Marker {
		start--
	}
	if start < 0 {
		return 0, errors.MarkerNotFound(s.Marker, offset)
	}
	if offset-start+1 > s.MaxSpan {
		return 0, errors.SpanTooLong(start, offset, s.MaxSpan)
	}
	return start, nil
}

// Neutralize overwrites [start, offset] with the trap byte. The range must
// come from Locate on the same buffer.
func (s Signature) Neutralize(b *Buffer, start, offset int) {
	for i := start; i <= offset; i++ {
		b.data[i] = s.Trap
	}
}
