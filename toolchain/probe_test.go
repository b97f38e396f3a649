package toolchain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wippyai/wasm-repair/toolchain"
	"github.com/wippyai/wasm-repair/toolchain/toolchaintest"
)

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
		err    bool
	}{
		{"wasm-opt version 116 (version_116)\n", "116.0.0", false},
		{"wasm-dis version 123\n", "123.0.0", false},
		{"wasm-opt version_105", "105.0.0", false},
		{"something else", "", true},
	}
	for _, tt := range tests {
		v, err := toolchain.ParseToolVersion(tt.output)
		if tt.err {
			if err == nil {
				t.Errorf("ParseToolVersion(%q) should fail", tt.output)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseToolVersion(%q): %v", tt.output, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("ParseToolVersion(%q) = %s, want %s", tt.output, v, tt.want)
		}
	}
}

func TestProber_Probe(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "wasm-opt" {
			return "/usr/bin/wasm-opt", nil
		}
		return "", errors.New("not found")
	}

	t.Run("supported", func(t *testing.T) {
		p := &toolchain.Prober{Runner: &toolchaintest.Binaryen{Version: "116"}, LookPath: lookPath}
		st := p.Probe(context.Background(), "wasm-opt")
		if !st.Found || !st.Supported || st.Err != nil {
			t.Errorf("status = %+v", st)
		}
		if st.Path != "/usr/bin/wasm-opt" || st.Version != "116" {
			t.Errorf("Path=%q Version=%q", st.Path, st.Version)
		}
	})

	t.Run("too old", func(t *testing.T) {
		p := &toolchain.Prober{Runner: &toolchaintest.Binaryen{Version: "101"}, LookPath: lookPath}
		st := p.Probe(context.Background(), "wasm-opt")
		if !st.Found || st.Supported || st.Err == nil {
			t.Errorf("status = %+v", st)
		}
	})

	t.Run("missing", func(t *testing.T) {
		p := &toolchain.Prober{Runner: &toolchaintest.Binaryen{}, LookPath: lookPath}
		st := p.Probe(context.Background(), "wasm-dis")
		if st.Found || st.Err == nil {
			t.Errorf("status = %+v", st)
		}
	})
}
