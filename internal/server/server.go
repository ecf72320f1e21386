package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ironsheep/photo-editor-mcp/internal/config"
	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Server handles MCP protocol communication and owns the open editing
// sessions.
type Server struct {
	cfg     config.Config
	sources *imaging.SourceCache
	metrics *editor.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*openSession
	nextID   int
}

type openSession struct {
	*editor.Session
	stopPreview context.CancelFunc
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used for every session.
func WithConfig(cfg config.Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithMetrics records session events in m.
func WithMetrics(m *editor.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the server logger. It must not write to stdout.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cfg:      config.Default(),
		logger:   slog.Default(),
		sessions: make(map[string]*openSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sources = imaging.NewSourceCache(imaging.NewLoader(
		imaging.WithFetchTimeout(s.cfg.Source.FetchTimeout),
		imaging.WithMaxBytes(s.cfg.Source.MaxBytes),
		imaging.WithLoaderLogger(s.logger),
	))
	return s
}

// Run serves requests from stdin to stdout until stdin closes or ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w until r is exhausted or ctx is done. Open sessions are closed when it
// returns.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	defer s.Close()

	lines, scanErr := s.readLines(ctx, r)
	encoder := json.NewEncoder(w)
	s.logger.Info("Server: ready", "version", Version, "webp", imaging.WebPAvailable())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := <-scanErr; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			line = l
		}
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("Server: failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Error("Server: failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("Server: failed to encode response", "error", err)
			}
		}
	}
}

// readLines scans r on its own goroutine so a blocked read cannot hold up
// cancellation. The lines channel is closed at end of input, after which
// scanErr yields the scanner's error. The goroutine exits once ctx is done
// and its current read returns.
func (s *Server) readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(scanErr)
		defer close(lines)

		scanner := bufio.NewScanner(r)
		// Sources can arrive inline as base64, so allow large lines.
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, int(s.cfg.Source.MaxBytes)*2+64*1024)

		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

// Close discards every open session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*openSession)
	s.mu.Unlock()

	for id, sess := range sessions {
		sess.stopPreview()
		_ = sess.Close()
		s.logger.Debug("Server: session discarded", "session", id)
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "photo-editor-mcp",
				"version": Version,
			},
		},
	}
}

// openSessionFor registers a new session and starts its preview loop.
func (s *Server) openSessionFor(sess *editor.Session) string {
	previewCtx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = sess.RunPreview(previewCtx)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("session-%d", s.nextID)
	s.sessions[id] = &openSession{Session: sess, stopPreview: cancel}
	return id
}

func (s *Server) session(id string) (*openSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %q", id)
	}
	return sess, nil
}

func (s *Server) closeSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session: %q", id)
	}
	sess.stopPreview()
	return sess.Close()
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
