package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/loaders"
	"github.com/df07/go-plymesh/pkg/ply"
)

// DefaultMaxUploadBytes limits request bodies accepted by the API
const DefaultMaxUploadBytes = 256 << 20

// DefaultMaxDataBytes limits the size of an upload after decompression
const DefaultMaxDataBytes = 1 << 30

// consoleBuffer is the number of log lines kept per request
const consoleBuffer = 64

// Server handles web requests for PLY inspection and conversion
type Server struct {
	port           int
	maxUploadBytes int64
	maxDataBytes   int64
	requests       atomic.Int64
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, maxUploadBytes: DefaultMaxUploadBytes, maxDataBytes: DefaultMaxDataBytes}
}

// SetMaxUploadBytes changes the request body limit
func (s *Server) SetMaxUploadBytes(n int64) {
	s.maxUploadBytes = n
}

// SetMaxDataBytes changes the limit on decompressed upload size
func (s *Server) SetMaxDataBytes(n int64) {
	s.maxDataBytes = n
}

// InspectResponse is the JSON response for /api/inspect
type InspectResponse struct {
	Summary     loaders.Summary  `json:"summary"`
	Compression string           `json:"compression"`
	Bytes       int              `json:"bytes"`
	ElapsedMs   int64            `json:"elapsedMs"`
	Console     []ConsoleMessage `json:"console"`
}

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string           `json:"error"`
	Console []ConsoleMessage `json:"console,omitempty"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/convert", s.handleConvert)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleInspect decodes the uploaded PLY file and returns its summary
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	consoleChan, logger := s.setupConsoleLogging()

	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.ply"
	}
	g, stats, err := loaders.LoadPLYBytes(name, data, s.maxDataBytes, logger)
	if err != nil {
		s.sendError(w, statusFor(err, http.StatusBadRequest), err, drainConsole(consoleChan))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InspectResponse{
		Summary:     loaders.Summarize(g),
		Compression: stats.Compression.String(),
		Bytes:       stats.FileBytes,
		ElapsedMs:   stats.Duration.Milliseconds(),
		Console:     drainConsole(consoleChan),
	})
}

// handleConvert re-encodes the uploaded PLY file. Query parameters:
// encoding (ascii, binary_little_endian, binary_big_endian), attributes (bool),
// compression (none, gzip, zstd) and comment.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	consoleChan, logger := s.setupConsoleLogging()

	opts, err := parseConvertOptions(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err), nil)
		return
	}

	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	g, _, err := loaders.LoadPLYBytes("upload.ply", data, s.maxDataBytes, logger)
	if err != nil {
		s.sendError(w, statusFor(err, http.StatusBadRequest), err, drainConsole(consoleChan))
		return
	}

	out, dataBytes, err := loaders.EncodePLY(g, opts)
	if err != nil {
		s.sendError(w, statusFor(err, http.StatusInternalServerError), err, drainConsole(consoleChan))
		return
	}
	logger.Printf("Encoded %d bytes as %s (%s)\n", dataBytes, opts.Encoding, opts.Compression)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set("X-PLY-Format", opts.Encoding.String())
	w.Header().Set("X-PLY-Compression", opts.Compression.String())
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func parseConvertOptions(r *http.Request) (loaders.SaveOptions, error) {
	query := r.URL.Query()
	opts := loaders.SaveOptions{Options: ply.DefaultOptions()}

	if v := query.Get("encoding"); v != "" {
		format, err := ply.ParseFormat(v)
		if err != nil {
			return opts, err
		}
		opts.Encoding = format
	}
	if v := query.Get("attributes"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid attributes value %q", v)
		}
		opts.IncludeAttributes = include
	}
	if v := query.Get("compression"); v != "" {
		c, err := loaders.ParseCompression(v)
		if err != nil {
			return opts, err
		}
		opts.Compression = c
	}
	if v := query.Get("comment"); v != "" {
		opts.Comments = []string{v}
	}
	return opts, nil
}

// setupConsoleLogging creates a per-request console and the logger feeding it
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	requestID := fmt.Sprintf("req-%d", s.requests.Add(1))
	consoleChan := make(chan ConsoleMessage, consoleBuffer)
	return consoleChan, NewWebLogger(requestID, consoleChan)
}

// readUpload reads a POST body, writing the error response itself on failure
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.sendError(w, http.StatusMethodNotAllowed, errors.New("POST a PLY file as the request body"), nil)
		return nil, false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit), nil)
			return nil, false
		}
		s.sendError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err), nil)
		return nil, false
	}
	if len(data) == 0 {
		s.sendError(w, http.StatusBadRequest, errors.New("empty request body"), nil)
		return nil, false
	}
	return data, true
}

// statusFor maps a failed load or encode to a status. Malformed input is a bad
// request, well-formed input that cannot be represented is unprocessable.
func statusFor(err error, fallback int) int {
	var (
		formatErr    *ply.FormatError
		typeErr      *ply.UnknownTypeError
		truncatedErr *ply.TruncatedDataError
		schemaErr    *ply.SchemaMismatchError
	)
	switch {
	case errors.Is(err, loaders.ErrDataTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &formatErr), errors.As(err, &typeErr), errors.As(err, &truncatedErr):
		return http.StatusBadRequest
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	default:
		return fallback
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, err error, console []ConsoleMessage) {
	log.Printf("API error (%d): %v", status, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Console: console})
}
