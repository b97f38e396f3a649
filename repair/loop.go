package repair

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-repair/diag"
	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/wasm"
)

// DefaultMaxPatches caps the number of patches a single Loop.Run may apply.
const DefaultMaxPatches = 4096

// Validator checks a module image. A nil finding means the module is valid.
type Validator interface {
	Validate(ctx context.Context, module []byte) (*diag.Finding, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, module []byte) (*diag.Finding, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, module []byte) (*diag.Finding, error) {
	return f(ctx, module)
}

// Patch records one neutralized instruction.
type Patch struct {
	// Diagnostic is the validator line the offset was taken from.
	Diagnostic string
	Start      int
	Offset     int
	Span       int
	// Decoded is the br_table encoding length at Start before patching,
	// or 0 when the bytes there do not decode.
	Decoded int
}

// Session is the audit record of one repair run.
type Session struct {
	Signature  Signature
	Patches    []Patch
	Iterations int
}

// Loop repeatedly validates and patches a buffer until the validator
// reports no findings.
type Loop struct {
	Validator  Validator
	Signature  Signature
	MaxPatches int
}

// Run drives buf to a clean state. On error buf holds every patch applied
// before the failure; the failing step itself never mutates it.
func (l *Loop) Run(ctx context.Context, buf *Buffer) (*Session, error) {
	if l.Validator == nil {
		return nil, errors.InvalidInput(errors.PhasePatch, "", "repair loop has no validator")
	}
	if err := l.Signature.Check(); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "repair signature")
	}
	limit := l.MaxPatches
	if limit <= 0 {
		limit = DefaultMaxPatches
	}

	log := Logger().With(zap.String("signature", l.Signature.Name))
	session := &Session{Signature: l.Signature}

	for {
		session.Iterations++
		log.Debug("validating", zap.Int("iteration", session.Iterations))

		finding, err := l.Validator.Validate(ctx, buf.Bytes())
		if err != nil {
			return session, err
		}
		if finding == nil {
			log.Debug("module is clean", zap.Int("patches", len(session.Patches)))
			return session, nil
		}

		if len(session.Patches) >= limit {
			return session, errors.NonConvergence(finding.Offset,
				fmt.Sprintf("patch limit %d reached with findings remaining", limit))
		}

		// Trap != Marker, so a trapped range is never located again.
		start, err := l.Signature.Locate(buf.Bytes(), finding.Offset)
		if err != nil {
			return session, err
		}
		p := Patch{
			Diagnostic: finding.Line,
			Start:      start,
			Offset:     finding.Offset,
			Span:       finding.Offset - start + 1,
		}
		if l.Signature.Marker == wasm.OpBrTable {
			if n, err := wasm.BrTableLen(buf.Bytes(), start); err == nil {
				p.Decoded = n
			}
		}

		log.Info("neutralizing instruction",
			zap.Int("start", p.Start),
			zap.Int("offset", p.Offset),
			zap.Int("span", p.Span),
			zap.Int("decoded", p.Decoded))

		l.Signature.Neutralize(buf, start, finding.Offset)
		session.Patches = append(session.Patches, p)
	}
}
