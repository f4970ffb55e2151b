package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compression selects the envelope wrapped around an encoded value.
type compression uint8

const (
	compressNone compression = iota
	// compressLZ4 uses the LZ4 frame format, which records its own
	// content size so no length needs to travel alongside it.
	compressLZ4
	compressZstd
)

func (c compression) String() string {
	switch c {
	case compressNone:
		return "none"
	case compressLZ4:
		return "lz4"
	case compressZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func parseCompression(name string) (compression, error) {
	switch name {
	case "", "none":
		return compressNone, nil
	case "lz4":
		return compressLZ4, nil
	case "zstd":
		return compressZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", name)
	}
}

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("varcodec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("varcodec: zstd decoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, c compression) ([]byte, error) {
	switch c {
	case compressNone:
		return data, nil

	case compressLZ4:
		var out bytes.Buffer
		w := lz4.NewWriter(&out)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return out.Bytes(), nil

	case compressZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

func decompress(data []byte, c compression) ([]byte, error) {
	switch c {
	case compressNone:
		return data, nil

	case compressLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil

	case compressZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}
