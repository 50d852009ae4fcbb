package core

import (
	"bytes"
	"testing"
)

// Ensure loggers implement Logger
var _ Logger = (*DefaultLogger)(nil)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Printf("Loaded %s: %d vertices\n", "bunny.ply", 35947)

	expected := "Loaded bunny.ply: 35947 vertices\n"
	if buf.String() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, buf.String())
	}
}

func TestDiscardLogger(t *testing.T) {
	// Should not panic
	DiscardLogger.Printf("ignored %d\n", 1)
}
