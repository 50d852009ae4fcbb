package core

import (
	"fmt"
	"io"
	"os"
)

// DefaultLogger implements Logger by writing to stdout
type DefaultLogger struct {
	out io.Writer
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(dl.out, format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() Logger {
	return &DefaultLogger{out: os.Stdout}
}

// NewWriterLogger creates a logger that writes to w, used to send CLI progress to stderr
func NewWriterLogger(w io.Writer) Logger {
	return &DefaultLogger{out: w}
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// DiscardLogger drops all output
var DiscardLogger Logger = discardLogger{}
