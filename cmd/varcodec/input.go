package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput returns the contents of the file named by the single
// positional argument, or all of stdin when there is none. With hexMode
// the input is hex text; whitespace is ignored.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, error) {
	var data []byte
	switch len(args) {
	case 0:
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	case 1:
		var err error
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", args[0], err)
		}
	default:
		return nil, fmt.Errorf("expected at most one input file, got %d arguments", len(args))
	}

	if hexMode {
		return decodeHexInput(data)
	}
	return data, nil
}

// decodeHexInput decodes hex text in which digit pairs may be separated
// or wrapped by any whitespace, as hexdump-style tools print them.
func decodeHexInput(text []byte) ([]byte, error) {
	digits := strings.Join(strings.Fields(string(text)), "")
	if digits == "" {
		return nil, errors.New("hex input holds no digits")
	}
	data, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}

// writeBinary writes binary output either raw or as a line of hex.
func writeBinary(w io.Writer, data []byte, hexMode bool) error {
	if hexMode {
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	_, err := w.Write(data)
	return err
}
