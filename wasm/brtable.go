package wasm

import (
	"bytes"
	"fmt"
)

// BrTableLen returns the encoded length of a br_table instruction starting
// at pos: the opcode, the label count, the label vector and the default label.
// It fails if data[pos] is not OpBrTable or the immediates run off the end.
func BrTableLen(data []byte, pos int) (int, error) {
	if pos < 0 || pos >= len(data) {
		return 0, fmt.Errorf("position %d out of bounds (length %d)", pos, len(data))
	}
	if data[pos] != OpBrTable {
		return 0, fmt.Errorf("byte 0x%02X at %d is not br_table", data[pos], pos)
	}

	r := bytes.NewReader(data[pos+1:])
	count, err := ReadLEB128u(r)
	if err != nil {
		return 0, fmt.Errorf("br_table label count: %w", err)
	}
	if count > MaxBrTableLabels {
		return 0, fmt.Errorf("br_table label count %d exceeds %d", count, MaxBrTableLabels)
	}
	// count labels plus the default label
	for i := uint32(0); i <= count; i++ {
		if _, err := ReadLEB128u(r); err != nil {
			return 0, fmt.Errorf("br_table label %d: %w", i, err)
		}
	}
	return len(data) - pos - r.Len(), nil
}
