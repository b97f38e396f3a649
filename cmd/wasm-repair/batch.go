package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/pipeline"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	var (
		outDir   string
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "batch -o <dir> <input>...",
		Short: "Repair and optimize several modules in parallel",
		Long: `Repair and optimize several independent modules.

Each output is written to <dir> under the input's file name. Runs proceed
in parallel up to --jobs; every module is attempted even when others fail.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return errors.InvalidInput(errors.PhaseConfig, "", "--out is required")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.IO("create output directory", outDir, err)
			}
			d, err := flags.driver(opts)
			if err != nil {
				return err
			}

			jobs := make([]pipeline.Job, 0, len(args))
			for _, in := range args {
				jobs = append(jobs, pipeline.Job{Input: in, Output: filepath.Join(outDir, filepath.Base(in))})
			}

			results, err := d.RunAll(context.Background(), jobs, parallel)
			for _, r := range results {
				if r.Report != nil {
					printReport(cmd.OutOrStdout(), r.Report)
				}
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().IntVarP(&parallel, "jobs", "j", 0, "maximum parallel runs (default GOMAXPROCS)")
	return cmd
}
