package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// cborEncMode writes Core Deterministic Encoding so equal values always
// produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("varcodec: cbor encoder initialization failed: " + err.Error())
	}
}

// runDecode reads one binary value and writes it in the requested format.
func runDecode(e *env, args []string) error {
	input, err := readInput(args, e.stdin, e.opts.Hex)
	if err != nil {
		return err
	}
	value, raw, err := e.decodeValue(input)
	if err != nil {
		return err
	}
	e.logger.Debug("decoded value", "type", e.shape, "bytes", len(raw), "format", e.opts.Format)

	switch e.opts.Format {
	case "json":
		return writeJSON(e.stdout, value, e.opts.Compact)
	case "yaml":
		return writeYAML(e.stdout, value)
	case "cbor":
		out, err := cborEncMode.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode CBOR: %w", err)
		}
		_, err = e.stdout.Write(out)
		return err
	case "msgpack":
		var out bytes.Buffer
		encoder := msgpack.NewEncoder(&out)
		encoder.SetSortMapKeys(true)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encode MessagePack: %w", err)
		}
		_, err = e.stdout.Write(out.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, yaml, cbor or msgpack)", e.opts.Format)
	}
}

// writeJSON encodes value as JSON with a trailing newline, indented with
// two spaces unless compact is set.
func writeJSON(w io.Writer, value any, compact bool) error {
	var output []byte
	var err error
	if compact {
		output, err = json.Marshal(value)
	} else {
		output, err = json.MarshalIndent(value, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func writeYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return encoder.Close()
}
