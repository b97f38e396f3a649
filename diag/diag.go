// Package diag extracts byte offsets from external validator diagnostics.
//
// Validator output is free text and its format drifts between tool
// releases. Everything format-specific lives behind Parser so the repair
// loop only ever sees an offset or an errors.KindDiagnosticUnparsable error.
package diag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/wippyai/wasm-repair/errors"
)

// Policy names a strategy for picking the offset out of diagnostic text.
type Policy string

const (
	// PolicyFirstNonZero takes the first line containing a non-zero integer
	// token and returns the first such token.
	PolicyFirstNonZero Policy = "first-nonzero"

	// PolicySecondInteger takes the first line containing at least two
	// integer tokens and returns the second one.
	PolicySecondInteger Policy = "second-integer"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyFirstNonZero

var (
	nonZeroToken = regexp.MustCompile(`[1-9][0-9]*`)
	anyToken     = regexp.MustCompile(`[0-9]+`)
)

// Finding is an offset extracted from a diagnostic together with the line it came from.
type Finding struct {
	Line   string
	Offset int
}

// Parser turns validator diagnostic output into a single offset.
type Parser interface {
	Parse(output string) (Finding, error)
}

// NewParser returns the parser implementing the given policy.
func NewParser(p Policy) (Parser, error) {
	switch p {
	case "", PolicyFirstNonZero:
		return tokenParser{pattern: nonZeroToken, minTokens: 1, index: 0}, nil
	case PolicySecondInteger:
		return tokenParser{pattern: anyToken, minTokens: 2, index: 1}, nil
	default:
		return nil, errors.InvalidInput(errors.PhaseConfig, "", fmt.Sprintf("unknown diagnostic policy %q", p))
	}
}

// Policies lists every supported policy name.
func Policies() []Policy {
	return []Policy{PolicyFirstNonZero, PolicySecondInteger}
}

type tokenParser struct {
	pattern   *regexp.Regexp
	minTokens int
	index     int
}

func (p tokenParser) Parse(output string) (Finding, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		tokens := p.pattern.FindAllString(line, -1)
		if len(tokens) < p.minTokens {
			continue
		}
		offset, err := toOffset(tokens[p.index])
		if err != nil {
			return Finding{}, errors.New(errors.PhaseValidate, errors.KindDiagnosticUnparsable).
				Detail("offset token %q on line %q", tokens[p.index], line).
				Cause(err).
				Output(output).
				Build()
		}
		return Finding{Line: line, Offset: offset}, nil
	}
	return Finding{}, errors.DiagnosticUnparsable(output)
}

func toOffset(tok string) (int, error) {
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](v)
}
