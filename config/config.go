// Package config assembles pipeline settings from defaults, an optional
// TOML file and the process environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasm-repair/diag"
	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/repair"
	"github.com/wippyai/wasm-repair/toolchain"
)

// Config is the immutable pipeline configuration.
type Config struct {
	Validator  ValidatorConfig   `toml:"validator"`
	Optimizer  OptimizerConfig   `toml:"optimizer"`
	Repair     RepairConfig      `toml:"repair"`
	Output     OutputConfig      `toml:"output"`
	LogLevel   string            `toml:"log_level"`
	Signatures []SignatureConfig `toml:"signature"`

	// Tier is captured from the build context, never from the file.
	Tier toolchain.Tier `toml:"-"`
}

type ValidatorConfig struct {
	Backend string `toml:"backend"`
	Tool    string `toml:"tool"`
	Policy  string `toml:"policy"`
}

type OptimizerConfig struct {
	Tool      string   `toml:"tool"`
	ExtraArgs []string `toml:"extra_args"`
}

type RepairConfig struct {
	Signature  string `toml:"signature"`
	MaxPatches int64  `toml:"max_patches"`
}

type OutputConfig struct {
	CopySourceMap bool `toml:"copy_source_map"`
	CopyDebugInfo bool `toml:"copy_debug_info"`
	Verify        bool `toml:"verify"`
}

// SignatureConfig declares an additional defect signature.
type SignatureConfig struct {
	Name    string `toml:"name"`
	Marker  int64  `toml:"marker"`
	Trap    int64  `toml:"trap"`
	MaxSpan int64  `toml:"max_span"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Validator: ValidatorConfig{
			Backend: string(toolchain.DefaultBackend),
			Policy:  string(diag.DefaultPolicy),
		},
		Repair: RepairConfig{
			Signature:  repair.SignatureBrTable.Name,
			MaxPatches: repair.DefaultMaxPatches,
		},
		Output: OutputConfig{
			CopySourceMap: true,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment. The build context is read here once.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	cfg.Tier = TierFromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, fmt.Sprintf("%s: failed to parse TOML", path))
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return errors.InvalidInput(errors.PhaseConfig, path, fmt.Sprintf("unknown keys: %v", undecoded))
	}
	for i, s := range c.Signatures {
		if strings.TrimSpace(s.Name) == "" {
			return errors.InvalidInput(errors.PhaseConfig, path, fmt.Sprintf("[[signature]] %d: missing name", i))
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Validator.Backend = getEnv("WASM_REPAIR_VALIDATOR_BACKEND", c.Validator.Backend)
	c.Validator.Tool = getEnv("WASM_REPAIR_VALIDATOR", c.Validator.Tool)
	c.Validator.Policy = getEnv("WASM_REPAIR_POLICY", c.Validator.Policy)
	c.Optimizer.Tool = getEnv("WASM_REPAIR_OPTIMIZER", c.Optimizer.Tool)
	c.Repair.Signature = getEnv("WASM_REPAIR_SIGNATURE", c.Repair.Signature)
	c.LogLevel = getEnv("WASM_REPAIR_LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("WASM_REPAIR_MAX_PATCHES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "WASM_REPAIR_MAX_PATCHES")
		}
		c.Repair.MaxPatches = n
	}
	if v := os.Getenv("WASM_REPAIR_VERIFY"); v != "" {
		c.Output.Verify = truthy(v)
	}
	return nil
}

// Validate checks that every named backend, policy and signature exists.
func (c *Config) Validate() error {
	if _, err := toolchain.ParseBackend(c.Validator.Backend); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "validator.backend")
	}
	if _, err := diag.NewParser(diag.Policy(c.Validator.Policy)); err != nil {
		return err
	}
	if c.Repair.MaxPatches < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "", "repair.max_patches must not be negative")
	}
	if _, err := c.Signature(); err != nil {
		return err
	}
	return nil
}

// Registry returns the built-in signatures plus those declared in the config.
func (c *Config) Registry() (*repair.Registry, error) {
	reg := repair.NewRegistry()
	for _, sc := range c.Signatures {
		sig, err := sc.signature()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(sig); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "signature "+sc.Name)
		}
	}
	return reg, nil
}

// Signature resolves the configured repair signature.
func (c *Config) Signature() (repair.Signature, error) {
	reg, err := c.Registry()
	if err != nil {
		return repair.Signature{}, err
	}
	sig, ok := reg.Lookup(c.Repair.Signature)
	if !ok {
		return repair.Signature{}, errors.InvalidInput(errors.PhaseConfig, "",
			fmt.Sprintf("unknown signature %q (known: %s)", c.Repair.Signature, strings.Join(reg.Names(), ", ")))
	}
	return sig, nil
}

// MaxPatches returns the patch ceiling as an int.
func (c *Config) MaxPatches() (int, error) {
	n, err := safecast.Conv[int](c.Repair.MaxPatches)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "repair.max_patches")
	}
	return n, nil
}

func (sc SignatureConfig) signature() (repair.Signature, error) {
	marker, err := safecast.Conv[byte](sc.Marker)
	if err != nil {
		return repair.Signature{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "signature "+sc.Name+": marker")
	}
	trap, err := safecast.Conv[byte](sc.Trap)
	if err != nil {
		return repair.Signature{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "signature "+sc.Name+": trap")
	}
	span, err := safecast.Conv[int](sc.MaxSpan)
	if err != nil {
		return repair.Signature{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "signature "+sc.Name+": max_span")
	}
	return repair.Signature{Name: sc.Name, Marker: marker, Trap: trap, MaxSpan: span}, nil
}

// TierFromEnv derives the optimizer tier from the DEBUG and CI variables.
// DEBUG takes precedence.
func TierFromEnv(getenv func(string) string) toolchain.Tier {
	switch {
	case truthy(getenv("DEBUG")):
		return toolchain.TierDebug
	case truthy(getenv("CI")):
		return toolchain.TierRelease
	default:
		return toolchain.TierDefault
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
