package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/loaders"
	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
)

const trianglePLY = `ply
format ascii 1.0
comment one triangle
element vertex 3
property float x
property float y
property float z
property float confidence
element face 1
property list uchar int vertex_indices
element camera 1
property float focal
end_header
0 0 0 0.9
1 0 0 0.8
0 2 0 0.7
3 0 1 2
35
`

func writeTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triangle.ply")
	if err := os.WriteFile(path, []byte(trianglePLY), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestRun_Info(t *testing.T) {
	path := writeTestFile(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"info", "-json", path}, &stdout, &stderr); err != nil {
		t.Fatalf("Unexpected error: %v (stderr: %s)", err, stderr.String())
	}

	var summary loaders.Summary
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\n%s", err, stdout.String())
	}
	if summary.Type != "mesh" || summary.Vertices != 3 || summary.Faces != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.Bounds == nil || summary.Bounds.Max != [3]float64{1, 2, 0} {
		t.Errorf("Expected bounds max [1 2 0], got %+v", summary.Bounds)
	}
	if len(summary.Elements) != 3 || summary.Elements[2].Name != "camera" {
		t.Errorf("Expected vertex, face and camera elements, got %+v", summary.Elements)
	}
	if !strings.Contains(stderr.String(), "Loaded PLY mesh") {
		t.Errorf("Expected load progress on stderr, got %q", stderr.String())
	}
}

func TestRun_Convert(t *testing.T) {
	path := writeTestFile(t)

	tests := []struct {
		name        string
		args        []string
		out         string
		format      ply.Format
		compression loaders.Compression
		attributes  bool
	}{
		{"default", nil, "out.ply", ply.BinaryLittleEndian, loaders.CompressionNone, true},
		{"ascii gzip", []string{"-encoding", "ascii"}, "out.ply.gz", ply.ASCII, loaders.CompressionGzip, true},
		{"big endian zstd no attributes", []string{"-encoding", "binary_big_endian", "-attributes=false"}, "out.ply.zst", ply.BinaryBigEndian, loaders.CompressionZstd, false},
		{"forced compression", []string{"-compression", "gzip"}, "forced.ply", ply.BinaryLittleEndian, loaders.CompressionGzip, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), tt.out)
			args := append([]string{"convert"}, tt.args...)
			args = append(args, path, out)

			var stdout, stderr bytes.Buffer
			if err := run(args, &stdout, &stderr); err != nil {
				t.Fatalf("Unexpected error: %v (stderr: %s)", err, stderr.String())
			}

			file, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("Failed to read output: %v", err)
			}
			if got := loaders.DetectCompression(file); got != tt.compression {
				t.Errorf("Expected %s compression, got %s", tt.compression, got)
			}

			g, err := loaders.LoadPLY(out, core.DiscardLogger)
			if err != nil {
				t.Fatalf("Failed to load output: %v", err)
			}
			raw := g.Common().Metadata[mesh.MetadataPLYRaw].(*ply.Raw)
			if raw.Format != tt.format {
				t.Errorf("Expected %s, got %s", tt.format, raw.Format)
			}
			_, hasConfidence := g.Common().VertexAttributes["confidence"]
			if hasConfidence != tt.attributes {
				t.Errorf("Expected confidence attribute present = %v", tt.attributes)
			}
			if (raw.Element("camera") != nil) != tt.attributes {
				t.Errorf("Expected camera element present = %v", tt.attributes)
			}
			if m := g.(*mesh.Mesh); len(m.Faces) != 1 {
				t.Errorf("Expected 1 face, got %d", len(m.Faces))
			}
		})
	}
}

func TestRun_Raw(t *testing.T) {
	path := writeTestFile(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"raw", "-element", "camera", path}, &stdout, &stderr); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "format ascii 1.0\nelement camera 1\n  property float focal\n"
	if stdout.String() != expected {
		t.Errorf("Expected %q, got %q", expected, stdout.String())
	}

	if err := run([]string{"raw", "-element", "lights", path}, &stdout, &stderr); err == nil {
		t.Error("Expected error for missing element")
	}
}

func TestRun_Errors(t *testing.T) {
	path := writeTestFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"render", path}},
		{"missing file argument", []string{"info"}},
		{"nonexistent file", []string{"info", "nonexistent.ply"}},
		{"bad encoding", []string{"convert", "-encoding", "binary", path, filepath.Join(t.TempDir(), "out.ply")}},
		{"bad compression", []string{"convert", "-compression", "lz4", path, filepath.Join(t.TempDir(), "out.ply")}},
		{"help flag", []string{"convert", "-help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(tt.args, &stdout, &stderr); err == nil {
				t.Errorf("Expected error for args %v", tt.args)
			}
		})
	}
}
