package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-repair/config"
	"github.com/wippyai/wasm-repair/toolchain"
)

const binaryenHint = "install binaryen from https://github.com/WebAssembly/binaryen/releases or your package manager"

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external toolchain is installed",
		Long: `Check that the validator and optimizer executables are on PATH and
recent enough (binaryen ` + toolchain.MinBinaryenVersion + ` or newer).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := probeTools(context.Background(), toolchain.NewProber(toolchain.ExecRunner{}), opts.cfg)
			if !printDoctor(cmd.OutOrStdout(), statuses, verbose) {
				return fmt.Errorf("toolchain incomplete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show tool paths")
	return cmd
}

// probeTools checks each distinct tool the configuration would run.
func probeTools(ctx context.Context, p *toolchain.Prober, cfg *config.Config) []toolchain.ToolStatus {
	validator := cfg.Validator.Tool
	if validator == "" {
		backend, err := toolchain.ParseBackend(cfg.Validator.Backend)
		if err != nil {
			backend = toolchain.DefaultBackend
		}
		validator = string(backend)
	}
	optimizer := cfg.Optimizer.Tool
	if optimizer == "" {
		optimizer = toolchain.DefaultOptimizerTool
	}

	tools := []string{validator}
	if optimizer != validator {
		tools = append(tools, optimizer)
	}

	statuses := make([]toolchain.ToolStatus, 0, len(tools))
	for _, tool := range tools {
		statuses = append(statuses, p.Probe(ctx, tool))
	}
	return statuses
}

// printDoctor writes one line per tool and reports whether all are usable.
func printDoctor(w io.Writer, statuses []toolchain.ToolStatus, verbose bool) bool {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	hint := color.New(color.FgYellow).SprintFunc()

	allOK := true
	for _, st := range statuses {
		if st.Supported {
			fmt.Fprintf(w, "%s %s (%s)\n", ok("[OK]"), st.Name, st.Version)
		} else {
			allOK = false
			fmt.Fprintf(w, "%s %s", fail("[FAIL]"), st.Name)
			if st.Version != "" {
				fmt.Fprintf(w, " (%s)", st.Version)
			}
			fmt.Fprintln(w)
			if st.Err != nil {
				fmt.Fprintf(w, "  %v\n", st.Err)
			}
			fmt.Fprintf(w, "  %s\n", hint("-> "+binaryenHint))
		}
		if verbose && st.Path != "" {
			fmt.Fprintf(w, "  path: %s\n", st.Path)
		}
	}
	return allOK
}
