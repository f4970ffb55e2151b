// Command varcodec converts between JSON and the varcodec binary layout
// and describes layouts declared in a YAML schema.
//
//	varcodec encode  --schema people.yaml --type Person person.json > person.bin
//	varcodec decode  --schema people.yaml --type Person --format yaml person.bin
//	varcodec inspect --schema people.yaml --type Person [person.bin]
//
// Input is read from the file named by the positional argument, or from stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/oy3o/varcodec"
	"github.com/oy3o/varcodec/dynamic"
)

// options holds the flags shared by every subcommand.
type options struct {
	Schema   string
	Type     string
	Hex      bool
	Compress string
	Compact  bool
	Verbose  bool
	Format   string
}

// command is one subcommand. run receives the positional arguments left
// after flag parsing.
type command struct {
	name    string
	summary string
	run     func(env *env, args []string) error
}

// env carries everything a subcommand needs once flags are parsed.
type env struct {
	opts        options
	shape       varcodec.Shape
	compression compression
	stdin       io.Reader
	stdout      io.Writer
	logger      *slog.Logger
}

var commands = []command{
	{name: "encode", summary: "convert a JSON value to binary", run: runEncode},
	{name: "decode", summary: "convert binary to JSON, YAML, CBOR or MessagePack", run: runDecode},
	{name: "inspect", summary: "print the layout of a type and describe an encoded value", run: runInspect},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "error: unknown command %q\n", args[0])
		usage(stderr)
		return 1
	}

	var opts options
	flags := newFlagSet(cmd.name, &opts)
	flags.SetOutput(stderr)
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	e, err := newEnv(opts, stdin, stdout, logger)
	if err == nil {
		err = cmd.run(e, flags.Args())
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(name string, opts *options) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVarP(&opts.Schema, "schema", "s", "", "YAML schema declaring composite types")
	flags.StringVarP(&opts.Type, "type", "t", "", `type expression to use, e.g. "Person" or "[]int32"`)
	flags.BoolVarP(&opts.Hex, "hex", "x", false, "binary data is hex text (output for encode, input otherwise)")
	flags.StringVar(&opts.Compress, "compress", "none", "compression around the binary data: none, lz4 or zstd")
	flags.BoolVarP(&opts.Compact, "compact", "c", false, "compact JSON output (no indentation)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")
	if name == "decode" {
		flags.StringVarP(&opts.Format, "format", "f", "json", "output format: json, yaml, cbor or msgpack")
	}
	return flags
}

func newEnv(opts options, stdin io.Reader, stdout io.Writer, logger *slog.Logger) (*env, error) {
	if opts.Type == "" {
		return nil, errors.New("--type is required")
	}
	c, err := parseCompression(opts.Compress)
	if err != nil {
		return nil, err
	}

	var shape varcodec.Shape
	if opts.Schema != "" {
		schema, err := dynamic.LoadSchema(opts.Schema)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded schema", "path", opts.Schema, "types", schema.Types())
		shape, err = schema.Shape(opts.Type)
		if err != nil {
			return nil, err
		}
	} else {
		shape, err = dynamic.ParseShape(opts.Type)
		if err != nil {
			return nil, err
		}
	}

	return &env{
		opts:        opts,
		shape:       shape,
		compression: c,
		stdin:       stdin,
		stdout:      stdout,
		logger:      logger,
	}, nil
}

// decodeValue decompresses data and decodes exactly one value of the
// configured shape from it.
func (e *env) decodeValue(data []byte) (any, []byte, error) {
	raw, err := decompress(data, e.compression)
	if err != nil {
		return nil, nil, err
	}
	if e.compression != compressNone {
		e.logger.Debug("decompressed input", "compression", e.compression, "from", len(data), "to", len(raw))
	}

	cur := varcodec.NewCursor(raw)
	value, ok := dynamic.Decode(cur, e.shape)
	if !ok {
		return nil, nil, fmt.Errorf("%w: decoding %s from %d bytes", varcodec.ErrTruncatedData, e.shape, len(raw))
	}
	if !cur.Empty() {
		return nil, nil, fmt.Errorf("%w: %d of %d bytes unread", varcodec.ErrTrailingData, cur.Remaining(), cur.Size())
	}
	return value, raw, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: varcodec <command> --type T [--schema file.yaml] [flags] [file]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun \"varcodec <command> --help\" for the flags of a command.\n")
}
