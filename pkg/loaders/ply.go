package loaders

import (
	"fmt"
	"os"
	"time"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
)

// LoadStats describes a completed load or save
type LoadStats struct {
	Path        string
	Compression Compression
	FileBytes   int           // bytes on disk
	DataBytes   int           // bytes of PLY data after decompression
	Duration    time.Duration // time spent reading and decoding
}

// SaveOptions controls how a geometry is written to disk
type SaveOptions struct {
	ply.Options
	Compression Compression // applied after encoding
}

// DefaultSaveOptions returns codec defaults with compression chosen from the file extension
func DefaultSaveOptions(filename string) SaveOptions {
	return SaveOptions{
		Options:     ply.DefaultOptions(),
		Compression: CompressionFromPath(filename),
	}
}

// LoadPLY loads a PLY file, decompressing gzip or zstd content transparently
func LoadPLY(filename string, logger core.Logger) (mesh.Geometry, error) {
	g, _, err := LoadPLYWithStats(filename, logger)
	return g, err
}

// LoadPLYWithStats loads a PLY file and reports how it was read
func LoadPLYWithStats(filename string, logger core.Logger) (mesh.Geometry, *LoadStats, error) {
	startTime := time.Now()

	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	return decodeFile(filename, file, DefaultMaxDataBytes, startTime, logger)
}

// LoadPLYBytes decodes the contents of a PLY file already in memory. name is
// used for messages only. The PLY data after decompression may be at most
// maxDataBytes long; zero or less means no limit.
func LoadPLYBytes(name string, file []byte, maxDataBytes int64, logger core.Logger) (mesh.Geometry, *LoadStats, error) {
	return decodeFile(name, file, maxDataBytes, time.Now(), logger)
}

func decodeFile(name string, file []byte, maxDataBytes int64, startTime time.Time, logger core.Logger) (mesh.Geometry, *LoadStats, error) {
	data, compression, err := Decompress(file, maxDataBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	g, err := ply.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	stats := &LoadStats{
		Path:        name,
		Compression: compression,
		FileBytes:   len(file),
		DataBytes:   len(data),
		Duration:    time.Since(startTime),
	}

	base := g.Common()
	switch g := g.(type) {
	case *mesh.Mesh:
		logger.Printf("✅ Loaded PLY mesh: %d vertices, %d triangles in %v\n",
			len(base.Vertices), len(g.Faces), stats.Duration)
	default:
		logger.Printf("✅ Loaded PLY point cloud: %d vertices in %v\n", len(base.Vertices), stats.Duration)
	}
	if compression != CompressionNone {
		logger.Printf("   %s: %d bytes on disk, %d bytes decompressed\n", compression, stats.FileBytes, stats.DataBytes)
	}

	return g, stats, nil
}

// EncodePLY encodes g and applies the requested compression. It also returns the
// size of the uncompressed PLY data.
func EncodePLY(g mesh.Geometry, opts SaveOptions) ([]byte, int, error) {
	data, err := ply.Encode(g, opts.Options)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode PLY: %w", err)
	}
	out, err := Compress(data, opts.Compression)
	if err != nil {
		return nil, 0, err
	}
	return out, len(data), nil
}

// SavePLY encodes g and writes it to filename
func SavePLY(filename string, g mesh.Geometry, opts SaveOptions, logger core.Logger) (*LoadStats, error) {
	startTime := time.Now()

	out, dataBytes, err := EncodePLY(g, opts)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(filename, out, 0644); err != nil {
		return nil, fmt.Errorf("failed to write PLY file: %w", err)
	}

	stats := &LoadStats{
		Path:        filename,
		Compression: opts.Compression,
		FileBytes:   len(out),
		DataBytes:   dataBytes,
		Duration:    time.Since(startTime),
	}
	logger.Printf("✅ Saved %s (%s, %s): %d bytes in %v\n",
		filename, opts.Encoding, opts.Compression, stats.FileBytes, stats.Duration)

	return stats, nil
}
