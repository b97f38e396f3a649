package toolchain

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-repair/diag"
	"github.com/wippyai/wasm-repair/errors"
)

// Backend selects the tool used to validate modules.
type Backend string

const (
	// BackendWasmOpt parses the module with a no-op wasm-opt run.
	BackendWasmOpt Backend = "wasm-opt"
	// BackendWasmDis disassembles the module with wasm-dis.
	BackendWasmDis Backend = "wasm-dis"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendWasmOpt

// ParseBackend checks a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "":
		return DefaultBackend, nil
	case BackendWasmOpt, BackendWasmDis:
		return Backend(s), nil
	}
	return "", fmt.Errorf("unknown validator backend %q", s)
}

// Validator checks module images with an external tool. It owns ScratchPath
// and rewrites it on every call.
type Validator struct {
	Runner  Runner
	Parser  diag.Parser
	Backend Backend
	// Tool overrides the executable; empty means the backend name.
	Tool        string
	ScratchPath string
}

// Validate writes module to the scratch path and runs the backend on it.
// It returns nil when the tool accepts the module.
func (v *Validator) Validate(ctx context.Context, module []byte) (*diag.Finding, error) {
	if err := os.WriteFile(v.ScratchPath, module, 0o644); err != nil {
		return nil, errors.IO("write scratch module", v.ScratchPath, err)
	}

	cmd := v.command()
	log := Logger().With(zap.String("tool", cmd.Name), zap.String("path", v.ScratchPath))
	log.Debug("running validator", zap.Stringer("command", cmd))

	res, err := v.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, errors.ExternalTool(errors.PhaseValidate, cmd.Name, err, "")
	}
	if !res.Failed() {
		return nil, nil
	}
	if res.Crashed() {
		return nil, errors.ExternalTool(errors.PhaseValidate, cmd.Name,
			fmt.Errorf("exit status %d", res.ExitCode), res.Output())
	}

	stderr := string(res.Stderr)
	log.Debug("validator rejected module", zap.Int("exit_code", res.ExitCode), zap.String("stderr", stderr))

	f, err := v.Parser.Parse(stderr)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (v *Validator) command() Command {
	backend := v.Backend
	if backend == "" {
		backend = DefaultBackend
	}
	tool := v.Tool
	if tool == "" {
		tool = string(backend)
	}

	switch backend {
	case BackendWasmDis:
		return Command{
			Name: tool,
			Args: []string{"--enable-exception-handling", v.ScratchPath, "-o", os.DevNull},
		}
	default:
		return Command{
			Name: tool,
			Args: []string{"--no-validation", "--enable-exception-handling", "-O0", v.ScratchPath, "-o", os.DevNull},
		}
	}
}
