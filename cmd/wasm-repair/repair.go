package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-repair/diag"
	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/pipeline"
	"github.com/wippyai/wasm-repair/toolchain"
)

// runFlags are shared by repair and batch.
type runFlags struct {
	tier        string
	policy      string
	backend     string
	signature   string
	verify      bool
	noSourceMap bool
	debugInfo   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.tier, "tier", "", "optimization tier (default, debug, release); overrides DEBUG/CI")
	fs.StringVar(&f.policy, "policy", "", "diagnostic offset policy ("+policyList()+")")
	fs.StringVar(&f.backend, "validator", "", "validator backend (wasm-opt, wasm-dis)")
	fs.StringVar(&f.signature, "signature", "", "defect signature to repair")
	fs.BoolVar(&f.verify, "verify", false, "compile the optimized module in-process as a smoke check")
	fs.BoolVar(&f.noSourceMap, "no-source-map", false, "do not copy <input>.map next to the output")
	fs.BoolVar(&f.debugInfo, "debug-info", false, "copy the <name>.wasm.debug.wasm companion if present")
}

// driver applies flag overrides to the loaded config and builds a Driver.
func (f *runFlags) driver(opts *rootOptions) (*pipeline.Driver, error) {
	cfg := *opts.cfg
	if f.tier != "" {
		tier, err := toolchain.ParseTier(f.tier)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "--tier")
		}
		cfg.Tier = tier
	}
	if f.policy != "" {
		cfg.Validator.Policy = f.policy
	}
	if f.backend != "" {
		cfg.Validator.Backend = f.backend
	}
	if f.signature != "" {
		cfg.Repair.Signature = f.signature
	}
	if f.verify {
		cfg.Output.Verify = true
	}
	if f.noSourceMap {
		cfg.Output.CopySourceMap = false
	}
	if f.debugInfo {
		cfg.Output.CopyDebugInfo = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return pipeline.New(&cfg, toolchain.ExecRunner{})
}

func newRepairCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "repair <input> <output>",
		Short: "Repair and optimize one module",
		Long: `Repair and optimize one module.

<input> is a module file, or a directory containing exactly one .so or .wasm
file. When <input> is a directory, <output> is treated as a directory and
created if needed; the output keeps the input's file name.`,
		Example: `  # Repair a module in place of a build artifact
  wasm-repair repair build/libOCP.so dist/libOCP.so

  # Directory mode, as called from a CMake post-build step
  CI=1 wasm-repair repair build/wasm dist/wasm`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output, err := resolvePaths(args[0], args[1])
			if err != nil {
				return err
			}
			d, err := flags.driver(opts)
			if err != nil {
				return err
			}
			report, err := d.Run(context.Background(), input, output)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// resolvePaths expands directory arguments into module file paths and
// makes sure the output directory exists.
func resolvePaths(in, out string) (string, string, error) {
	st, err := os.Stat(in)
	if err != nil {
		return "", "", errors.IO("stat input", in, err)
	}

	if st.IsDir() {
		input, err := pipeline.FindInput(in)
		if err != nil {
			return "", "", err
		}
		if err := os.MkdirAll(out, 0o755); err != nil {
			return "", "", errors.IO("create output directory", out, err)
		}
		return input, filepath.Join(out, filepath.Base(input)), nil
	}

	if ost, err := os.Stat(out); err == nil && ost.IsDir() {
		return in, filepath.Join(out, filepath.Base(in)), nil
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", "", errors.IO("create output directory", filepath.Dir(out), err)
	}
	return in, out, nil
}

func policyList() string {
	names := make([]string, 0, len(diag.Policies()))
	for _, p := range diag.Policies() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
