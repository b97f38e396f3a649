// Package toolchaintest provides a fake binaryen for tests.
package toolchaintest

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/wippyai/wasm-repair/toolchain"
	"github.com/wippyai/wasm-repair/wasm"
)

// Binaryen is a toolchain.Runner that imitates wasm-opt and wasm-dis on
// real files. Validation fails at the first offset in Bad whose byte is
// not yet the trap byte. Optimization copies the input to the output.
type Binaryen struct {
	mu sync.Mutex

	Bad []int
	// Diagnostic formats the validator stderr for a failing offset.
	Diagnostic func(offset int) string
	// Version is printed for --version.
	Version string

	OptimizeExit   int
	OptimizeStderr string
	// RunErr makes every invocation fail to start.
	RunErr error
	// Crash makes validation runs die by signal after writing Diagnostic
	// output for the first bad offset.
	Crash bool

	Calls []toolchain.Command
}

// ParseException formats offsets the way binaryen reports parse errors.
func ParseException(offset int) string {
	return fmt.Sprintf("[parse exception: invalid br_table target (at 0:%d)]\nFatal: error parsing wasm (try --debug for more info)\n", offset)
}

// Run implements toolchain.Runner.
func (b *Binaryen) Run(_ context.Context, cmd toolchain.Command) (*toolchain.Result, error) {
	b.mu.Lock()
	b.Calls = append(b.Calls, cmd)
	b.mu.Unlock()

	if b.RunErr != nil {
		return nil, b.RunErr
	}

	switch {
	case slices.Contains(cmd.Args, "--version"):
		v := b.Version
		if v == "" {
			v = "116"
		}
		return &toolchain.Result{Stdout: []byte(fmt.Sprintf("wasm-opt version %s (version_%s)\n", v, v))}, nil
	case slices.Contains(cmd.Args, "--post-emscripten"):
		return b.optimize(cmd)
	default:
		return b.validate(cmd)
	}
}

// ValidationCalls counts invocations that were not optimizer or version runs.
func (b *Binaryen) ValidationCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.Calls {
		if !slices.Contains(c.Args, "--post-emscripten") && !slices.Contains(c.Args, "--version") {
			n++
		}
	}
	return n
}

func (b *Binaryen) validate(cmd toolchain.Command) (*toolchain.Result, error) {
	input := cmd.Args[len(cmd.Args)-3]
	data, err := os.ReadFile(input)
	if err != nil {
		return &toolchain.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
	}
	for _, off := range b.Bad {
		if off < len(data) && data[off] != wasm.OpUnreachable {
			format := b.Diagnostic
			if format == nil {
				format = ParseException
			}
			if b.Crash {
				return &toolchain.Result{ExitCode: -1, Signaled: true, Stderr: []byte(format(off))}, nil
			}
			return &toolchain.Result{ExitCode: 1, Stderr: []byte(format(off))}, nil
		}
	}
	return &toolchain.Result{}, nil
}

func (b *Binaryen) optimize(cmd toolchain.Command) (*toolchain.Result, error) {
	if b.OptimizeExit != 0 {
		return &toolchain.Result{ExitCode: b.OptimizeExit, Stderr: []byte(b.OptimizeStderr)}, nil
	}
	input := cmd.Args[len(cmd.Args)-3]
	output := cmd.Args[len(cmd.Args)-1]
	data, err := os.ReadFile(input)
	if err != nil {
		return &toolchain.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return &toolchain.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
	}
	return &toolchain.Result{}, nil
}
