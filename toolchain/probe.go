package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/hashicorp/go-version"
)

// MinBinaryenVersion is the oldest binaryen release with the exception
// handling support the pipeline relies on.
const MinBinaryenVersion = "110"

var versionPattern = regexp.MustCompile(`version[ _]+v?(\d+(?:\.\d+)*)`)

// ToolStatus describes one probed executable.
type ToolStatus struct {
	Err       error
	Name      string
	Path      string
	Version   string
	Found     bool
	Supported bool
}

// Prober locates tools and queries their versions.
type Prober struct {
	Runner   Runner
	LookPath func(string) (string, error)
	Minimum  string
}

// NewProber returns a Prober backed by the real PATH.
func NewProber(r Runner) *Prober {
	return &Prober{Runner: r, LookPath: exec.LookPath, Minimum: MinBinaryenVersion}
}

// Probe reports whether tool is installed and at least the minimum version.
func (p *Prober) Probe(ctx context.Context, tool string) ToolStatus {
	st := ToolStatus{Name: tool}

	path, err := p.LookPath(tool)
	if err != nil {
		st.Err = err
		return st
	}
	st.Found = true
	st.Path = path

	res, err := p.Runner.Run(ctx, Command{Name: path, Args: []string{"--version"}})
	if err != nil {
		st.Err = err
		return st
	}
	if res.Failed() {
		st.Err = fmt.Errorf("%s --version exited with status %d", tool, res.ExitCode)
		return st
	}

	v, err := ParseToolVersion(res.Output())
	if err != nil {
		st.Err = err
		return st
	}
	st.Version = v.Original()

	minimum := p.Minimum
	if minimum == "" {
		minimum = MinBinaryenVersion
	}
	minV, err := version.NewVersion(minimum)
	if err != nil {
		st.Err = fmt.Errorf("invalid minimum version %q: %w", minimum, err)
		return st
	}
	st.Supported = v.GreaterThanOrEqual(minV)
	if !st.Supported {
		st.Err = fmt.Errorf("%s %s is older than %s", tool, st.Version, minimum)
	}
	return st
}

// ParseToolVersion extracts the version from binaryen --version output,
// e.g. "wasm-opt version 116 (version_116)".
func ParseToolVersion(output string) (*version.Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, fmt.Errorf("no version in %q", output)
	}
	return version.NewVersion(m[1])
}
