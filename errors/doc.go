// Package errors provides structured error types for the wasm-repair pipeline.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the file path involved, the byte offset when one is known,
// the raw output of an external tool, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLocate, errors.KindSpanTooLong).
//		Path("module.wasm").
//		Offset(1234).
//		Detail("span %d exceeds bound %d", 41, 30).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DiagnosticUnparsable(stderr)
//	err := errors.MarkerNotFound(0x0E, 1234)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported Err* values are match targets for errors.Is:
//
//	if errors.Is(err, errors.ErrSpanTooLong) { ... }
package errors
