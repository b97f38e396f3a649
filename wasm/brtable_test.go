package wasm_test

import (
	"testing"

	"github.com/wippyai/wasm-repair/wasm"
)

// brTable encodes a br_table whose last label is the default.
func brTable(labels ...uint32) []byte {
	b := wasm.AppendLEB128u([]byte{wasm.OpBrTable}, uint32(len(labels)-1))
	for _, l := range labels {
		b = wasm.AppendLEB128u(b, l)
	}
	return b
}

func TestBrTableLen(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		pos     int
		want    int
		wantErr bool
	}{
		{
			name: "no labels",
			data: []byte{wasm.OpBrTable, 0x00, 0x00},
			want: 3,
		},
		{
			name: "two labels",
			data: []byte{wasm.OpNop, wasm.OpBrTable, 0x02, 0x00, 0x01, 0x02, wasm.OpEnd},
			pos:  1,
			want: 5,
		},
		{
			name: "multi-byte label",
			data: brTable(128, 0),
			want: 5,
		},
		{
			name: "wide table",
			data: brTable(1000, 300, 2, 70000),
			want: 1 + 1 + 2 + 2 + 1 + 3,
		},
		{
			name:    "not a br_table",
			data:    []byte{wasm.OpBr, 0x00},
			wantErr: true,
		},
		{
			name:    "truncated labels",
			data:    []byte{wasm.OpBrTable, 0x03, 0x00},
			wantErr: true,
		},
		{
			name:    "absurd label count",
			data:    []byte{wasm.OpBrTable, 0xff, 0xff, 0xff, 0xff, 0x0f},
			wantErr: true,
		},
		{
			name:    "position out of bounds",
			data:    []byte{wasm.OpBrTable},
			pos:     4,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wasm.BrTableLen(tt.data, tt.pos)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got length %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BrTableLen = %d, want %d", got, tt.want)
			}
		})
	}
}
