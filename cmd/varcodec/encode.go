package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/oy3o/varcodec"
	"github.com/oy3o/varcodec/dynamic"
)

// runEncode reads one JSON value (comments and trailing commas allowed)
// and writes its binary encoding.
func runEncode(e *env, args []string) error {
	input, err := readInput(args, e.stdin, false)
	if err != nil {
		return err
	}
	value, err := parseJSON(input)
	if err != nil {
		return err
	}

	b := varcodec.NewBuffer(len(input))
	if err := dynamic.Encode(b, e.shape, value); err != nil {
		return err
	}
	e.logger.Debug("encoded value", "type", e.shape, "json_bytes", len(input), "bytes", b.Len())

	out, err := compress(b.Bytes(), e.compression)
	if err != nil {
		return err
	}
	if e.compression != compressNone {
		e.logger.Debug("compressed output", "compression", e.compression, "from", b.Len(), "to", len(out))
	}
	return writeBinary(e.stdout, out, e.opts.Hex)
}

// parseJSON decodes exactly one JSON value, keeping numbers as
// json.Number so 64-bit integers survive intact.
func parseJSON(data []byte) (any, error) {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil, errors.New("empty input: expected a JSON value")
	}

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse JSON: unexpected data after the first value")
	}
	return value, nil
}
