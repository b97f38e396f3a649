package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-repair/config"
	"github.com/wippyai/wasm-repair/diag"
	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/repair"
	"github.com/wippyai/wasm-repair/toolchain"
	"github.com/wippyai/wasm-repair/wasm"
)

const (
	// ScratchSuffix is appended to the input path for the validator's scratch file.
	ScratchSuffix = ".fixed.wasm"
	// StagingSuffix is appended to the output path for the optimizer's output.
	StagingSuffix = ".opt.tmp"
	// SourceMapSuffix names the optional source map next to a module.
	SourceMapSuffix = ".map"
	// DebugInfoSuffix names the optional companion module holding debug info.
	DebugInfoSuffix = ".wasm.debug.wasm"
)

// Report summarizes a finished run.
type Report struct {
	Input      string
	Output     string
	Signature  repair.Signature
	Patches    []repair.Patch
	Iterations int
	Tier       toolchain.Tier
	Duration   time.Duration

	SourceMapCopied bool
	DebugInfoCopied bool
	Verified        bool
	// VerifyErr is set when the optional compile check rejected the output.
	VerifyErr error
}

// Driver runs the repair-and-optimize pipeline for one module at a time.
type Driver struct {
	Runner    toolchain.Runner
	Parser    diag.Parser
	Backend   toolchain.Backend
	Optimizer toolchain.Optimizer
	Signature repair.Signature
	// ValidatorTool overrides the validator executable.
	ValidatorTool string
	MaxPatches    int

	CopySourceMap bool
	CopyDebugInfo bool
	Verify        bool
}

// New builds a Driver from configuration.
func New(cfg *config.Config, runner toolchain.Runner) (*Driver, error) {
	parser, err := diag.NewParser(diag.Policy(cfg.Validator.Policy))
	if err != nil {
		return nil, err
	}
	backend, err := toolchain.ParseBackend(cfg.Validator.Backend)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "validator.backend")
	}
	sig, err := cfg.Signature()
	if err != nil {
		return nil, err
	}
	maxPatches, err := cfg.MaxPatches()
	if err != nil {
		return nil, err
	}

	return &Driver{
		Runner:        runner,
		Parser:        parser,
		Backend:       backend,
		ValidatorTool: cfg.Validator.Tool,
		Optimizer: toolchain.Optimizer{
			Runner:    runner,
			Tool:      cfg.Optimizer.Tool,
			ExtraArgs: cfg.Optimizer.ExtraArgs,
			Tier:      cfg.Tier,
		},
		Signature:     sig,
		MaxPatches:    maxPatches,
		CopySourceMap: cfg.Output.CopySourceMap,
		CopyDebugInfo: cfg.Output.CopyDebugInfo,
		Verify:        cfg.Output.Verify,
	}, nil
}

// ScratchPath returns the scratch file used while repairing input.
func ScratchPath(input string) string {
	return input + ScratchSuffix
}

// Run repairs input and writes the optimized module to output. The output
// is only created once a clean, optimized module exists.
func (d *Driver) Run(ctx context.Context, input, output string) (report *Report, err error) {
	started := time.Now()
	log := Logger().With(zap.String("input", input), zap.String("output", output))

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.IO("read input module", input, err)
	}
	if err := wasm.CheckHeader(data); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).Path(input).Cause(err).Detail("not a WebAssembly module").Build()
	}

	scratch := ScratchPath(input)
	staging := output + StagingSuffix
	committed := false
	defer func() {
		cleanup := multierr.Combine(removeIfExists(scratch), removeIfExists(staging))
		if committed {
			// output is complete; a leftover intermediate is not a failed run
			if cleanup != nil {
				log.Warn("intermediate files not removed", zap.Error(cleanup))
			}
			return
		}
		err = multierr.Append(err, cleanup)
		if err != nil {
			report = nil
		}
	}()

	log.Info("repairing module", zap.Int("size", len(data)), zap.String("signature", d.Signature.Name))
	buf := repair.NewBuffer(data)
	loop := &repair.Loop{
		Validator: &toolchain.Validator{
			Runner:      d.Runner,
			Parser:      d.Parser,
			Backend:     d.Backend,
			Tool:        d.ValidatorTool,
			ScratchPath: scratch,
		},
		Signature:  d.Signature,
		MaxPatches: d.MaxPatches,
	}
	session, err := loop.Run(ctx, buf)
	if err != nil {
		return nil, err
	}
	log.Info("module validates", zap.Int("patches", len(session.Patches)), zap.Int("iterations", session.Iterations))

	if err := os.WriteFile(scratch, buf.Bytes(), 0o644); err != nil {
		return nil, errors.IO("write repaired module", scratch, err)
	}
	if err := d.Optimizer.Optimize(ctx, scratch, staging); err != nil {
		return nil, err
	}
	if err := removeIfExists(scratch); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, output); err != nil {
		return nil, errors.IO("commit output module", output, err)
	}
	committed = true

	report = &Report{
		Input:      input,
		Output:     output,
		Signature:  session.Signature,
		Patches:    session.Patches,
		Iterations: session.Iterations,
		Tier:       d.Optimizer.Tier,
	}

	if d.CopySourceMap {
		report.SourceMapCopied = copyCompanion(log, input+SourceMapSuffix, output+SourceMapSuffix)
	}
	if d.CopyDebugInfo {
		report.DebugInfoCopied = copyCompanion(log, debugInfoPath(input), debugInfoPath(output))
	}
	if d.Verify {
		if verr := VerifyFile(ctx, output); verr != nil {
			log.Warn("optimized module failed the compile check", zap.Error(verr))
			report.VerifyErr = verr
		} else {
			report.Verified = true
		}
	}

	report.Duration = time.Since(started)
	log.Info("module written", zap.Duration("duration", report.Duration))
	return report, nil
}

func debugInfoPath(module string) string {
	return strings.TrimSuffix(module, filepath.Ext(module)) + DebugInfoSuffix
}

// copyCompanion copies an optional sibling file. A missing source is not an
// error; any other failure is logged and reported as not copied.
func copyCompanion(log *zap.Logger, src, dst string) bool {
	if _, err := os.Stat(src); err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot stat companion file", zap.String("path", src), zap.Error(err))
		}
		return false
	}
	if err := copyFile(src, dst); err != nil {
		log.Warn("companion file not copied", zap.String("path", src), zap.Error(err))
		return false
	}
	log.Info("copied companion file", zap.String("path", dst))
	return true
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.IO("remove intermediate file", path, err)
	}
	return nil
}
