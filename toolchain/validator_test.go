package toolchain_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/wippyai/wasm-repair/diag"
	rerrors "github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/toolchain"
	"github.com/wippyai/wasm-repair/toolchain/toolchaintest"
)

func newValidator(t *testing.T, fake *toolchaintest.Binaryen, backend toolchain.Backend, policy diag.Policy) *toolchain.Validator {
	t.Helper()
	p, err := diag.NewParser(policy)
	if err != nil {
		t.Fatal(err)
	}
	return &toolchain.Validator{
		Runner:      fake,
		Parser:      p,
		Backend:     backend,
		ScratchPath: filepath.Join(t.TempDir(), "module.wasm.fixed.wasm"),
	}
}

func TestValidator_Clean(t *testing.T) {
	fake := &toolchaintest.Binaryen{}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)
	module := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	f, err := v.Validate(context.Background(), module)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f != nil {
		t.Errorf("finding = %+v, want nil", f)
	}

	written, err := os.ReadFile(v.ScratchPath)
	if err != nil {
		t.Fatalf("scratch not written: %v", err)
	}
	if !bytes.Equal(written, module) {
		t.Error("scratch contents differ from module")
	}
}

func TestValidator_Finding(t *testing.T) {
	fake := &toolchaintest.Binaryen{Bad: []int{5}}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)

	f, err := v.Validate(context.Background(), bytes.Repeat([]byte{0x01}, 8))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f == nil || f.Offset != 5 {
		t.Fatalf("finding = %+v, want offset 5", f)
	}
}

func TestValidator_Commands(t *testing.T) {
	tests := []struct {
		backend toolchain.Backend
		tool    string
		name    string
		args    []string
	}{
		{toolchain.BackendWasmOpt, "", "wasm-opt", []string{"--no-validation", "--enable-exception-handling", "-O0"}},
		{toolchain.BackendWasmDis, "", "wasm-dis", []string{"--enable-exception-handling"}},
		{toolchain.BackendWasmOpt, "/opt/binaryen/bin/wasm-opt", "/opt/binaryen/bin/wasm-opt", []string{"-O0"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend)+tt.tool, func(t *testing.T) {
			fake := &toolchaintest.Binaryen{}
			v := newValidator(t, fake, tt.backend, diag.PolicyFirstNonZero)
			v.Tool = tt.tool
			if _, err := v.Validate(context.Background(), []byte{1}); err != nil {
				t.Fatal(err)
			}
			cmd := fake.Calls[0]
			if cmd.Name != tt.name {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.name)
			}
			for _, a := range tt.args {
				if !slices.Contains(cmd.Args, a) {
					t.Errorf("args %v missing %q", cmd.Args, a)
				}
			}
			n := len(cmd.Args)
			if cmd.Args[n-3] != v.ScratchPath || cmd.Args[n-2] != "-o" || cmd.Args[n-1] != os.DevNull {
				t.Errorf("args %v should end with scratch -o devnull", cmd.Args)
			}
		})
	}
}

func TestValidator_SecondIntegerPolicy(t *testing.T) {
	fake := &toolchaintest.Binaryen{Bad: []int{6}}
	v := newValidator(t, fake, toolchain.BackendWasmDis, diag.PolicySecondInteger)

	f, err := v.Validate(context.Background(), bytes.Repeat([]byte{0x01}, 8))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f.Offset != 6 {
		t.Errorf("Offset = %d, want 6", f.Offset)
	}
}

func TestValidator_Unparsable(t *testing.T) {
	fake := &toolchaintest.Binaryen{
		Bad:        []int{2},
		Diagnostic: func(int) string { return "Fatal: error parsing wasm\n" },
	}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)

	_, err := v.Validate(context.Background(), []byte{1, 1, 1, 1})
	if !errors.Is(err, rerrors.ErrDiagnosticUnparsable) {
		t.Fatalf("error = %v, want DiagnosticUnparsable", err)
	}
}

func TestValidator_ToolFailure(t *testing.T) {
	fake := &toolchaintest.Binaryen{RunErr: errors.New("executable file not found")}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)

	_, err := v.Validate(context.Background(), []byte{1})
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Kind != rerrors.KindExternalTool || rerr.Phase != rerrors.PhaseValidate {
		t.Fatalf("error = %v, want external tool failure", err)
	}
}

func TestValidator_CrashedTool(t *testing.T) {
	fake := &toolchaintest.Binaryen{
		Bad:        []int{3},
		Crash:      true,
		Diagnostic: func(int) string { return "pass 12 running" },
	}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)

	f, err := v.Validate(context.Background(), bytes.Repeat([]byte{0x01}, 8))
	if f != nil {
		t.Fatalf("finding = %+v, want none from a crashed validator", f)
	}
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Kind != rerrors.KindExternalTool || rerr.Phase != rerrors.PhaseValidate {
		t.Fatalf("error = %v, want external tool failure", err)
	}
	if rerr.Output != "pass 12 running" {
		t.Errorf("Output = %q, want the tool output unmodified", rerr.Output)
	}
}

func TestValidator_ScratchUnwritable(t *testing.T) {
	fake := &toolchaintest.Binaryen{}
	v := newValidator(t, fake, toolchain.BackendWasmOpt, diag.PolicyFirstNonZero)
	v.ScratchPath = filepath.Join(t.TempDir(), "missing", "dir", "x.wasm")

	_, err := v.Validate(context.Background(), []byte{1})
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Kind != rerrors.KindIO {
		t.Fatalf("error = %v, want IO failure", err)
	}
	if len(fake.Calls) != 0 {
		t.Error("tool should not run when scratch write fails")
	}
}

func TestParseBackend(t *testing.T) {
	if b, err := toolchain.ParseBackend(""); err != nil || b != toolchain.DefaultBackend {
		t.Errorf("ParseBackend(\"\") = %v, %v", b, err)
	}
	if b, err := toolchain.ParseBackend("wasm-dis"); err != nil || b != toolchain.BackendWasmDis {
		t.Errorf("ParseBackend(wasm-dis) = %v, %v", b, err)
	}
	if _, err := toolchain.ParseBackend("wasm-validate"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
