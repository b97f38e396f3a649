package toolchain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-repair/errors"
)

// Tier selects optimizer aggressiveness.
type Tier int

const (
	// TierDefault runs a single moderate optimization level.
	TierDefault Tier = iota
	// TierDebug keeps debug info and skips optimization.
	TierDebug
	// TierRelease optimizes as far as wasm-opt goes.
	TierRelease
)

func (t Tier) String() string {
	switch t {
	case TierDebug:
		return "debug"
	case TierRelease:
		return "release"
	default:
		return "default"
	}
}

// Flags returns the wasm-opt optimization flags for the tier.
func (t Tier) Flags() []string {
	switch t {
	case TierDebug:
		return []string{"-O0", "--debuginfo"}
	case TierRelease:
		return []string{"-O4"}
	default:
		return []string{"-O1"}
	}
}

// ParseTier accepts the names returned by Tier.String.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "", "default":
		return TierDefault, nil
	case "debug":
		return TierDebug, nil
	case "release", "ci":
		return TierRelease, nil
	}
	return TierDefault, fmt.Errorf("unknown optimization tier %q", s)
}

// DefaultOptimizerTool is the optimizer executable name.
const DefaultOptimizerTool = "wasm-opt"

// Optimizer runs wasm-opt on a repaired module.
type Optimizer struct {
	Runner Runner
	// Tool overrides the executable; empty means wasm-opt.
	Tool      string
	ExtraArgs []string
	Tier      Tier
}

// Optimize reads input and writes the optimized module to output.
func (o *Optimizer) Optimize(ctx context.Context, input, output string) error {
	cmd := o.command(input, output)
	log := Logger().With(zap.String("tool", cmd.Name), zap.Stringer("tier", o.Tier))
	log.Info("optimizing", zap.String("input", input), zap.String("output", output))
	log.Debug("running optimizer", zap.Stringer("command", cmd))

	res, err := o.Runner.Run(ctx, cmd)
	if err != nil {
		return errors.ExternalTool(errors.PhaseOptimize, cmd.Name, err, "")
	}
	if res.Failed() {
		return errors.ExternalTool(errors.PhaseOptimize, cmd.Name,
			fmt.Errorf("exit status %d", res.ExitCode), res.Output())
	}
	return nil
}

func (o *Optimizer) command(input, output string) Command {
	tool := o.Tool
	if tool == "" {
		tool = DefaultOptimizerTool
	}
	args := []string{"--no-validation", "--enable-exception-handling", "--post-emscripten"}
	args = append(args, o.Tier.Flags()...)
	args = append(args, o.ExtraArgs...)
	args = append(args, input, "-o", output)
	return Command{Name: tool, Args: args}
}
