package core

// Logger interface for load, save and request logging
type Logger interface {
	Printf(format string, args ...interface{})
}
