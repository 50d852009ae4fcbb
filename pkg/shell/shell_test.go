package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
)

const quadPLY = `ply
format ascii 1.0
comment quad with a tag element
element vertex 4
property float x
property float y
property float z
property float quality
element face 1
property list uchar int vertex_indices
property uchar red
property uchar green
property uchar blue
element tag 3
property int id
property list uchar int refs
end_header
0 0 0 0.5
1 0 0 0.25
1 1 0 1
0 1 0 2
4 0 1 2 3 255 0 0
1 2 1 0
2 2 1 3
3 0
`

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	g, err := ply.Decode([]byte(quadPLY))
	if err != nil {
		t.Fatalf("Failed to decode test PLY: %v", err)
	}
	var out bytes.Buffer
	return New("quad.ply", g, &out, core.DiscardLogger), &out
}

func TestExecute_Commands(t *testing.T) {
	tests := []struct {
		line     string
		expected []string
	}{
		{"help", []string{"commands:", "element <name> [rows]", "export"}},
		{"info", []string{"Type:       mesh", "Vertices:   4", "Triangles:  2", "Colors:     face", "comment quad with a tag element"}},
		{"elements", []string{"element vertex 4", "  property list uchar int vertex_indices", "element tag 3"}},
		{"element tag", []string{"id\trefs", "1\t[1 0]", "2\t[1 3]", "3\t[]"}},
		{"element vertex 2", []string{"x\ty\tz\tquality", "1\t0\t0\t0.25", "... 2 more rows"}},
		{"attributes", []string{"vertex.quality\twidth 1\t4 rows"}},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out := newTestShell(t)
			quit, err := s.Execute(tt.line)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if quit {
				t.Error("Command should not quit the shell")
			}
			for _, expected := range tt.expected {
				if !strings.Contains(out.String(), expected) {
					t.Errorf("Expected %q in output:\n%s", expected, out.String())
				}
			}
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	for _, line := range []string{"frobnicate", "element", "element camera", "element tag many", "export", "export out.ply middle_endian"} {
		s, _ := newTestShell(t)
		if _, err := s.Execute(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}

func TestExecute_Quit(t *testing.T) {
	for _, line := range []string{"quit", "exit"} {
		s, _ := newTestShell(t)
		quit, err := s.Execute(line)
		if err != nil || !quit {
			t.Errorf("%q: expected quit, got %v, %v", line, quit, err)
		}
	}
}

func TestExecute_Export(t *testing.T) {
	s, out := newTestShell(t)
	path := filepath.Join(t.TempDir(), "quad.ply")

	if _, err := s.Execute("export " + path + " ascii"); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if !strings.Contains(out.String(), "wrote") {
		t.Errorf("Expected write confirmation, got %s", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	raw, err := ply.DecodeRaw(data)
	if err != nil {
		t.Fatalf("Failed to decode export: %v", err)
	}
	if raw.Format != ply.ASCII {
		t.Errorf("Expected ascii export, got %s", raw.Format)
	}
	if raw.Element("tag") == nil {
		t.Error("Expected tag element to be carried into the export")
	}

	// declined overwrite leaves the file alone
	s.confirm = func(string) bool { return false }
	if _, err := s.Execute("export " + path + " binary_big_endian"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	again, _ := os.ReadFile(path)
	if !bytes.Equal(again, data) {
		t.Error("Expected declined export to leave the file unchanged")
	}
}

func TestElementNames(t *testing.T) {
	s, _ := newTestShell(t)
	names := s.elementNames("")
	if strings.Join(names, ",") != "vertex,face,tag" {
		t.Errorf("Expected vertex,face,tag, got %v", names)
	}

	s = New("cloud.ply", mesh.NewPointCloud(nil), &bytes.Buffer{}, core.DiscardLogger)
	if len(s.elementNames("")) != 0 {
		t.Error("Expected no element names without a source layout")
	}
	if _, err := s.Execute("elements"); err == nil {
		t.Error("Expected error listing elements without a source layout")
	}
}
