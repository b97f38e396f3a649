package pipeline_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wippyai/wasm-repair/pipeline"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		module  []byte
		wantErr bool
	}{
		{"empty module", header, false},
		{
			// (module (func)) : one type, one function, one empty body
			name: "single function",
			module: append(append([]byte(nil), header...),
				0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
				0x03, 0x02, 0x01, 0x00,
				0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b),
		},
		{
			// body trapped by a repair: unreachable instead of br_table
			name: "trapped body",
			module: append(append([]byte(nil), header...),
				0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
				0x03, 0x02, 0x01, 0x00,
				0x0a, 0x07, 0x01, 0x05, 0x00, 0x00, 0x00, 0x00, 0x0b),
		},
		{"truncated section", append(append([]byte(nil), header...), 0x01, 0x05, 0x01), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.Verify(context.Background(), tt.module)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyFile_Missing(t *testing.T) {
	if err := pipeline.VerifyFile(context.Background(), filepath.Join(t.TempDir(), "nope.wasm")); err == nil {
		t.Error("expected error for missing file")
	}
}
