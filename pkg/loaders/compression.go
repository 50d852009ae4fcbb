package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the container wrapped around a PLY file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// DefaultMaxDataBytes limits the decompressed size of files read from disk
const DefaultMaxDataBytes int64 = 8 << 30

// ErrDataTooLarge is returned when decompressed data exceeds the allowed size
var ErrDataTooLarge = errors.New("decompressed data exceeds limit")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// ParseCompression resolves a compression name as accepted on the command line
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression: %s", name)
	}
}

// CompressionFromPath picks the compression from the file extension (.gz, .zst)
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// DetectCompression inspects the leading magic bytes of data
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Decompress unwraps gzip or zstd data; uncompressed data is returned unchanged.
// Decompressed output larger than maxBytes fails with ErrDataTooLarge. A limit of
// zero or less means no limit.
func Decompress(data []byte, maxBytes int64) ([]byte, Compression, error) {
	c := DetectCompression(data)
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, c, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		var r io.Reader = zr
		if maxBytes > 0 {
			r = io.LimitReader(zr, maxBytes+1)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, c, fmt.Errorf("failed to decompress gzip stream: %w", err)
		}
		if maxBytes > 0 && int64(len(out)) > maxBytes {
			return nil, c, fmt.Errorf("gzip stream: %w (%d bytes)", ErrDataTooLarge, maxBytes)
		}
		return out, c, nil
	case CompressionZstd:
		var opts []zstd.DOption
		if maxBytes > 0 {
			window := min(max(uint64(maxBytes), zstd.MinWindowSize), zstd.MaxWindowSize)
			opts = append(opts, zstd.WithDecoderMaxMemory(uint64(maxBytes)), zstd.WithDecoderMaxWindow(window))
		}
		dec, err := zstd.NewReader(nil, opts...)
		if err != nil {
			return nil, c, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) ||
			(err == nil && maxBytes > 0 && int64(len(out)) > maxBytes) {
			return nil, c, fmt.Errorf("zstd stream: %w (%d bytes)", ErrDataTooLarge, maxBytes)
		}
		if err != nil {
			return nil, c, fmt.Errorf("failed to decompress zstd stream: %w", err)
		}
		return out, c, nil
	default:
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, c, fmt.Errorf("%w (%d bytes)", ErrDataTooLarge, maxBytes)
		}
		return data, c, nil
	}
}

// Compress wraps data in the given container
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write gzip stream: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish gzip stream: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		out := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish zstd stream: %w", err)
		}
		return out, nil
	case CompressionNone:
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %d", c)
	}
}
