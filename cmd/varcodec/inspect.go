package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zeebo/blake3"

	"github.com/oy3o/varcodec"
)

// runInspect prints the wire layout of the configured type. Given an
// input file, or "-" for stdin, it also checks that the input decodes as
// that type and reports its size and BLAKE3 digest.
func runInspect(e *env, args []string) error {
	w := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	writeLayout(w, e.shape)

	if len(args) > 0 {
		if args[0] == "-" {
			args = args[1:]
		}
		input, err := readInput(args, e.stdin, e.opts.Hex)
		if err != nil {
			return err
		}
		_, raw, err := e.decodeValue(input)
		if err != nil {
			return err
		}
		digest := blake3.Sum256(raw)
		fmt.Fprintf(w, "size:\t%d bytes\n", len(raw))
		if e.compression != compressNone {
			fmt.Fprintf(w, "stored:\t%d bytes (%s)\n", len(input), e.compression)
		}
		fmt.Fprintf(w, "blake3:\t%s\n", hex.EncodeToString(digest[:]))
	}
	return w.Flush()
}

func writeLayout(w io.Writer, shape varcodec.Shape) {
	fmt.Fprintf(w, "type:\t%s\n", shape)
	fmt.Fprintf(w, "kind:\t%s\n", shape.Kind)
	if shape.Kind != varcodec.KindComposite {
		return
	}
	desc := shape.Record
	var chain []string
	for _, d := range desc.Chain() {
		chain = append(chain, d.Name)
	}
	if len(chain) > 1 {
		fmt.Fprintf(w, "extends:\t%v\n", chain[:len(chain)-1])
	}
	fmt.Fprintln(w, "fields:")
	for i, line := range desc.Layout() {
		fmt.Fprintf(w, "  %d\t%s\n", i, line)
	}
}
