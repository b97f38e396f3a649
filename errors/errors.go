package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // reading and checking the input module
	PhaseValidate Phase = "validate" // external validator run
	PhaseLocate   Phase = "locate"   // backward marker scan
	PhasePatch    Phase = "patch"    // repair loop bookkeeping
	PhaseOptimize Phase = "optimize" // external optimizer run
	PhaseIO       Phase = "io"       // scratch, staging and output files
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindDiagnosticUnparsable Kind = "diagnostic_unparsable"
	KindMarkerNotFound       Kind = "marker_not_found"
	KindSpanTooLong          Kind = "span_too_long"
	KindOffsetOutOfRange     Kind = "offset_out_of_range"
	KindExternalTool         Kind = "external_tool"
	KindIO                   Kind = "io"
	KindNonConvergence       Kind = "non_convergence"
	KindInvalidInput         Kind = "invalid_input"
)

// Match targets for errors.Is.
var (
	ErrDiagnosticUnparsable = &Error{Phase: PhaseValidate, Kind: KindDiagnosticUnparsable}
	ErrMarkerNotFound       = &Error{Phase: PhaseLocate, Kind: KindMarkerNotFound}
	ErrSpanTooLong          = &Error{Phase: PhaseLocate, Kind: KindSpanTooLong}
	ErrOffsetOutOfRange     = &Error{Phase: PhaseLocate, Kind: KindOffsetOutOfRange}
	ErrNonConvergence       = &Error{Phase: PhasePatch, Kind: KindNonConvergence}
)

// Error is the structured error type used throughout the pipeline
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Path   string
	Detail string
	// Output is raw text produced by an external tool, passed through unmodified.
	Output string
	// Offset is the byte offset the error refers to, or -1.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	if out := strings.TrimRight(e.Output, "\n"); out != "" {
		b.WriteByte('\n')
		b.WriteString(out)
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the file path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Output sets the raw tool output
func (b *Builder) Output(out string) *Builder {
	b.err.Output = out
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DiagnosticUnparsable reports validator output with no usable offset.
func DiagnosticUnparsable(output string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindDiagnosticUnparsable,
		Detail: "could not parse an offset from validator diagnostics",
		Output: output,
		Offset: -1,
	}
}

// MarkerNotFound reports an exhausted backward scan.
func MarkerNotFound(marker byte, offset int) *Error {
	return &Error{
		Phase:  PhaseLocate,
		Kind:   KindMarkerNotFound,
		Detail: fmt.Sprintf("no marker byte 0x%02X at or before the error offset", marker),
		Offset: offset,
		Value:  marker,
	}
}

// SpanTooLong reports a candidate instruction longer than the sanity bound.
func SpanTooLong(start, offset, limit int) *Error {
	span := offset - start + 1
	return &Error{
		Phase:  PhaseLocate,
		Kind:   KindSpanTooLong,
		Detail: fmt.Sprintf("span [%d, %d] is %d bytes, bound is %d (module may be invalid for a different reason)", start, offset, span, limit),
		Offset: offset,
		Value:  span,
	}
}

// OffsetOutOfRange reports a diagnostic offset beyond the module.
func OffsetOutOfRange(offset, length int) *Error {
	return &Error{
		Phase:  PhaseLocate,
		Kind:   KindOffsetOutOfRange,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Offset: offset,
		Value:  offset,
	}
}

// NonConvergence reports a repair loop that stopped making progress.
func NonConvergence(offset int, detail string) *Error {
	return &Error{
		Phase:  PhasePatch,
		Kind:   KindNonConvergence,
		Detail: detail,
		Offset: offset,
	}
}

// ExternalTool reports a tool that failed to run or exited unexpectedly.
func ExternalTool(phase Phase, tool string, cause error, output string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExternalTool,
		Detail: fmt.Sprintf("%s failed", tool),
		Cause:  cause,
		Output: output,
		Offset: -1,
	}
}

// IO wraps a filesystem failure on the given path.
func IO(op, path string, cause error) *Error {
	return &Error{
		Phase:  PhaseIO,
		Kind:   KindIO,
		Path:   path,
		Detail: op,
		Cause:  cause,
		Offset: -1,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
		Offset: -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}
