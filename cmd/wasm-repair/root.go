package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/wasm-repair/config"
	"github.com/wippyai/wasm-repair/pipeline"
	"github.com/wippyai/wasm-repair/repair"
	"github.com/wippyai/wasm-repair/toolchain"
)

type rootOptions struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wasm-repair",
		Short: "Repair malformed br_table instructions in WebAssembly modules and optimize them",
		Long: `wasm-repair fixes WebAssembly modules that binaryen rejects because of
malformed br_table instructions emitted by a buggy code generator.

It validates the module, overwrites each malformed instruction with
unreachable until validation passes, then runs wasm-opt on the result.
Reaching a patched instruction at runtime traps instead of loading failing.

The optimization level follows the build context: DEBUG=1 keeps debug info
at -O0, CI=1 optimizes at -O4, otherwise -O1.`,
		Version:       version + " (" + commitSHA + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("WASM_REPAIR_CONFIG"), "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	cmd.AddCommand(
		newRepairCmd(opts),
		newBatchCmd(opts),
		newLocateCmd(opts),
		newDoctorCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	o.logger = logger
	repair.SetLogger(logger.Named("repair"))
	toolchain.SetLogger(logger.Named("toolchain"))
	pipeline.SetLogger(logger.Named("pipeline"))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = lvl > zapcore.DebugLevel
	if isTerminal(os.Stderr) {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
