package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Env is appended to the current process environment.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	// Signaled is set when the process was terminated by a signal. ExitCode
	// is -1 in that case.
	Signaled bool
}

// Failed reports whether the process did not exit normally with status 0.
func (r *Result) Failed() bool {
	return r.ExitCode != 0 || r.Signaled
}

// Crashed reports whether the process died without reporting an exit status.
func (r *Result) Crashed() bool {
	return r.Signaled || r.ExitCode < 0
}

// Output returns stderr followed by stdout, for error reporting.
func (r *Result) Output() string {
	if len(r.Stdout) == 0 {
		return string(r.Stderr)
	}
	if len(r.Stderr) == 0 {
		return string(r.Stdout)
	}
	return string(r.Stderr) + "\n" + string(r.Stdout)
}

// Runner executes a command to completion.
// A non-zero exit status is reported in Result, not as an error; the error
// is reserved for processes that could not be run at all.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			res.Signaled = res.ExitCode < 0
			return res, nil
		}
		return nil, err
	}
	return res, nil
}
