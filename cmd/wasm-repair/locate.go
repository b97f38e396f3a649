package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-repair/errors"
	"github.com/wippyai/wasm-repair/repair"
	"github.com/wippyai/wasm-repair/wasm"
)

func newLocateCmd(opts *rootOptions) *cobra.Command {
	var signature string

	cmd := &cobra.Command{
		Use:   "locate <file> <offset>",
		Short: "Show the span that would be neutralized for a diagnostic offset",
		Long: `Run the backward marker scan for one diagnostic offset without
modifying the file. Prints the start of the instruction, the span and the
bytes that repair would overwrite.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := opts.cfg.Repair.Signature
			if signature != "" {
				name = signature
			}
			reg, err := opts.cfg.Registry()
			if err != nil {
				return err
			}
			sig, ok := reg.Lookup(name)
			if !ok {
				return errors.InvalidInput(errors.PhaseConfig, "", fmt.Sprintf("unknown signature %q", name))
			}

			offset, err := parseOffset(args[1])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.IO("read module", args[0], err)
			}
			return printLocation(cmd.OutOrStdout(), sig, data, offset)
		},
	}
	cmd.Flags().StringVar(&signature, "signature", "", "defect signature to scan for")
	return cmd
}

// parseOffset accepts decimal or 0x-prefixed hexadecimal offsets.
func parseOffset(s string) (int, error) {
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.InvalidInput(errors.PhaseLocate, "", fmt.Sprintf("invalid offset %q", s))
	}
	n, err := safecast.Conv[int](u)
	if err != nil {
		return 0, errors.InvalidInput(errors.PhaseLocate, "", fmt.Sprintf("offset %s out of range", s))
	}
	return n, nil
}

func printLocation(w io.Writer, sig repair.Signature, data []byte, offset int) error {
	start, err := sig.Locate(data, offset)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "signature: %s\n", sig)
	fmt.Fprintf(w, "start:     %d (0x%x)\n", start, start)
	fmt.Fprintf(w, "offset:    %d (0x%x)\n", offset, offset)
	fmt.Fprintf(w, "span:      %d bytes\n", offset-start+1)
	if sig.Marker == wasm.OpBrTable {
		if n, err := wasm.BrTableLen(data, start); err == nil {
			fmt.Fprintf(w, "decoded:   %d bytes\n", n)
		} else {
			fmt.Fprintf(w, "decoded:   %v\n", err)
		}
	}
	fmt.Fprint(w, hex.Dump(data[start:offset+1]))
	return nil
}
