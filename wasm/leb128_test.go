package wasm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wippyai/wasm-repair/wasm"
)

func TestLEB128Unsigned(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0x80, 0x02}, 256},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := wasm.AppendLEB128u(nil, tt.value); !bytes.Equal(got, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, got, tt.encoded)
			}
			if got := wasm.AppendLEB128u([]byte{wasm.OpBrTable}, tt.value); !bytes.Equal(got[1:], tt.encoded) || got[0] != wasm.OpBrTable {
				t.Errorf("append %d: got %v", tt.value, got)
			}

			got, err := wasm.ReadLEB128u(bytes.NewReader(tt.encoded))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestLEB128Overflow(t *testing.T) {
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, err := wasm.ReadLEB128u(bytes.NewReader(data))
	if !errors.Is(err, wasm.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestLEB128Truncated(t *testing.T) {
	_, err := wasm.ReadLEB128u(bytes.NewReader([]byte{0x80}))
	if err == nil {
		t.Error("expected error for truncated value")
	}
}
