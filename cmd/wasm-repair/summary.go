package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-repair/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// printReport writes a run summary, styled when w is a terminal.
func printReport(w io.Writer, r *pipeline.Report) {
	f, ok := w.(*os.File)
	if ok && isTerminal(f) {
		fmt.Fprintln(w, renderReport(r, true))
		return
	}
	fmt.Fprintln(w, renderReport(r, false))
}

func renderReport(r *pipeline.Report, styled bool) string {
	rows := [][2]string{
		{"input", r.Input},
		{"output", r.Output},
		{"signature", r.Signature.Name},
		{"patches", fmt.Sprintf("%d", len(r.Patches))},
		{"iterations", fmt.Sprintf("%d", r.Iterations)},
		{"tier", r.Tier.String()},
		{"duration", r.Duration.Round(time.Millisecond).String()},
	}
	if r.SourceMapCopied {
		rows = append(rows, [2]string{"source map", "copied"})
	}
	if r.DebugInfoCopied {
		rows = append(rows, [2]string{"debug info", "copied"})
	}
	switch {
	case r.Verified:
		rows = append(rows, [2]string{"verify", "ok"})
	case r.VerifyErr != nil:
		rows = append(rows, [2]string{"verify", "warning: " + r.VerifyErr.Error()})
	}

	if !styled {
		var b strings.Builder
		for _, row := range rows {
			fmt.Fprintf(&b, "%-11s %s\n", row[0]+":", row[1])
		}
		for _, p := range r.Patches {
			fmt.Fprintf(&b, "  patched [%d, %d] (%d bytes)\n", p.Start, p.Offset, p.Span)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	lines := []string{titleStyle.Render("wasm-repair")}
	for _, row := range rows {
		val := row[1]
		if row[0] == "verify" && r.VerifyErr != nil {
			val = warnStyle.Render(val)
		}
		lines = append(lines, keyStyle.Render(row[0])+val)
	}
	for _, p := range r.Patches {
		lines = append(lines, fmt.Sprintf("  patched [%d, %d] (%d bytes)", p.Start, p.Offset, p.Span))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
