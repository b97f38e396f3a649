package diag_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-repair/diag"
	rerrors "github.com/wippyai/wasm-repair/errors"
)

func TestParse_FirstNonZero(t *testing.T) {
	p, err := diag.NewParser(diag.PolicyFirstNonZero)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		output string
		want   int
		line   string
	}{
		{
			name:   "binaryen parse exception",
			output: "[parse exception: invalid br_table target (at 0:4567)]\nFatal: error parsing wasm\n",
			want:   4567,
			line:   "[parse exception: invalid br_table target (at 0:4567)]",
		},
		{
			name:   "skips lines without non-zero integers",
			output: "warning: something at 0:0\nerror at 0:15\n",
			want:   15,
			line:   "error at 0:15",
		},
		{
			name:   "first token on the line wins",
			output: "offset 321 then 999",
			want:   321,
			line:   "offset 321 then 999",
		},
		{
			name:   "leading zeros are skipped",
			output: "at 0010",
			want:   10,
			line:   "at 0010",
		},
		{
			name:   "crlf line endings",
			output: "nothing here\r\nat 77\r\n",
			want:   77,
			line:   "at 77",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.Parse(tt.output)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if f.Offset != tt.want {
				t.Errorf("Offset = %d, want %d", f.Offset, tt.want)
			}
			if f.Line != tt.line {
				t.Errorf("Line = %q, want %q", f.Line, tt.line)
			}
		})
	}
}

func TestParse_SecondInteger(t *testing.T) {
	p, err := diag.NewParser(diag.PolicySecondInteger)
	if err != nil {
		t.Fatal(err)
	}

	f, err := p.Parse("[wasm-dis] single 5\n[parse exception: bad (at 0:2048)]\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Offset != 2048 {
		t.Errorf("Offset = %d, want 2048", f.Offset)
	}

	if _, err := p.Parse("only 12 here"); !errors.Is(err, rerrors.ErrDiagnosticUnparsable) {
		t.Errorf("expected DiagnosticUnparsable, got %v", err)
	}
}

func TestParse_Unparsable(t *testing.T) {
	for _, policy := range diag.Policies() {
		t.Run(string(policy), func(t *testing.T) {
			p, err := diag.NewParser(policy)
			if err != nil {
				t.Fatal(err)
			}
			raw := "Fatal: error parsing wasm (try --debug for more info)"
			_, err = p.Parse(raw)
			if !errors.Is(err, rerrors.ErrDiagnosticUnparsable) {
				t.Fatalf("expected DiagnosticUnparsable, got %v", err)
			}
			if !strings.Contains(err.Error(), raw) {
				t.Errorf("error should carry raw diagnostic text, got %q", err.Error())
			}
		})
	}
}

func TestParse_HugeOffset(t *testing.T) {
	p, _ := diag.NewParser(diag.DefaultPolicy)
	_, err := p.Parse("at 99999999999999999999999")
	if !errors.Is(err, rerrors.ErrDiagnosticUnparsable) {
		t.Errorf("expected DiagnosticUnparsable, got %v", err)
	}
}

func TestNewParser_Unknown(t *testing.T) {
	if _, err := diag.NewParser("last-integer"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if _, err := diag.NewParser(""); err != nil {
		t.Errorf("empty policy should select the default: %v", err)
	}
}
