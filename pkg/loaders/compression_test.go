package loaders

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/df07/go-plymesh/pkg/mesh"
)

func TestCompressionFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Compression
	}{
		{"bunny.ply", CompressionNone},
		{"bunny.ply.gz", CompressionGzip},
		{"BUNNY.PLY.GZ", CompressionGzip},
		{"scans/bunny.ply.zst", CompressionZstd},
		{"bunny.zstd", CompressionZstd},
		{"bunny", CompressionNone},
	}

	for _, test := range tests {
		if got := CompressionFromPath(test.path); got != test.expected {
			t.Errorf("CompressionFromPath(%s): expected %s, got %s", test.path, test.expected, got)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for name, expected := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "gz": CompressionGzip, "GZIP": CompressionGzip, "zstd": CompressionZstd} {
		got, err := ParseCompression(name)
		if err != nil || got != expected {
			t.Errorf("ParseCompression(%q): expected %s, got %s (%v)", name, expected, got, err)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("Expected error for unknown compression")
	}
}

func TestCompressDecompress(t *testing.T) {
	data := []byte(strings.Repeat("ply\nformat ascii 1.0\n", 100))

	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			packed, err := Compress(data, c)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}
			if c != CompressionNone && len(packed) >= len(data) {
				t.Errorf("Expected compressed size below %d, got %d", len(data), len(packed))
			}
			if got := DetectCompression(packed); got != c {
				t.Errorf("Expected detected compression %s, got %s", c, got)
			}

			unpacked, detected, err := Decompress(packed, int64(len(data)))
			if err != nil {
				t.Fatalf("Failed to decompress: %v", err)
			}
			if detected != c {
				t.Errorf("Expected %s, got %s", c, detected)
			}
			if !bytes.Equal(unpacked, data) {
				t.Error("Decompressed data does not match input")
			}
		})
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	for _, data := range [][]byte{
		{0x1f, 0x8b, 0x00, 0x01},
		{0x28, 0xb5, 0x2f, 0xfd, 0xff, 0xff},
	} {
		if _, _, err := Decompress(data, 0); err == nil {
			t.Errorf("Expected error for corrupt %s stream", DetectCompression(data))
		}
	}
}

func TestDecompress_Limit(t *testing.T) {
	data := bytes.Repeat([]byte("0 0 0\n"), 64<<10)

	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			packed, err := Compress(data, c)
			if err != nil {
				t.Fatalf("Failed to compress: %v", err)
			}

			if _, _, err := Decompress(packed, 4096); !errors.Is(err, ErrDataTooLarge) {
				t.Errorf("Expected ErrDataTooLarge, got %v", err)
			}
			if _, _, err := Decompress(packed, int64(len(data))-1); !errors.Is(err, ErrDataTooLarge) {
				t.Errorf("Expected ErrDataTooLarge one byte under the size, got %v", err)
			}
			unpacked, _, err := Decompress(packed, int64(len(data)))
			if err != nil {
				t.Fatalf("Expected data at the limit to decompress, got %v", err)
			}
			if len(unpacked) != len(data) {
				t.Errorf("Expected %d bytes, got %d", len(data), len(unpacked))
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	pc := mesh.NewPointCloud([]vec3.T{{-1, 0, 2}, {3, 4, 5}})
	pc.SetVertexColor(mesh.RGBA{1, 2, 3, 4})
	pc.VertexAttributes["intensity"] = mesh.NewScalarAttribute([]float64{0.5, 0.7})

	s := Summarize(pc)
	if s.Type != "point_cloud" || s.Vertices != 2 || s.Faces != 0 {
		t.Errorf("Unexpected summary counts: %+v", s)
	}
	if s.Colors != "vertex" {
		t.Errorf("Expected vertex colors, got %s", s.Colors)
	}
	if s.Bounds == nil || s.Bounds.Min != [3]float64{-1, 0, 2} || s.Bounds.Size != [3]float64{4, 4, 3} {
		t.Errorf("Unexpected bounds: %+v", s.Bounds)
	}
	if len(s.VertexAttributes) != 1 || s.VertexAttributes[0] != "intensity" {
		t.Errorf("Expected intensity attribute, got %v", s.VertexAttributes)
	}

	var buf bytes.Buffer
	s.Print(&buf)
	for _, line := range []string{"Type:       point_cloud", "Vertices:   2", "Vertex attributes: intensity"} {
		if !strings.Contains(buf.String(), line) {
			t.Errorf("Expected %q in output:\n%s", line, buf.String())
		}
	}
}
