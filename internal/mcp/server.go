// ABOUTME: MCP Streamable HTTP transport serving many concurrent logical sessions.
// ABOUTME: Owns the session registry: creation on initialize, reuse by id, teardown on DELETE.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// session tracks one active MCP client session. ctx is cancelled when the
// session is terminated so in-flight tool calls stop polling promptly.
type session struct {
	id              string
	protocolVersion string
	createdAt       time.Time
	ctx             context.Context
	cancel          context.CancelFunc
}

// sessionStore manages active sessions (in-memory). Identifiers are random
// UUIDs and are never reused after removal.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

// create allocates a fresh session under the lock so two racing initialize
// requests can never share an identifier.
func (s *sessionStore) create(protocolVersion string) *session {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:              uuid.New().String(),
		protocolVersion: protocolVersion,
		createdAt:       time.Now(),
		ctx:             ctx,
		cancel:          cancel,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

// delete removes the session and cancels its context, interrupting any
// in-flight tool call bound to it.
func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	sess, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if existed {
		sess.cancel()
	}
	return existed
}

// drain removes and cancels all live sessions, returning their ids.
func (s *sessionStore) drain() []string {
	s.mu.Lock()
	drained := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		drained = append(drained, sess)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	ids := make([]string, 0, len(drained))
	for _, sess := range drained {
		sess.cancel()
		ids = append(ids, sess.id)
	}
	return ids
}

// Config holds configuration for the MCP HTTP server.
type Config struct {
	Tools      *ToolSet
	Logger     *slog.Logger
	ServerName string
	Version    string
}

// Server implements the MCP Streamable HTTP transport. Each inbound request
// resolves its session before any tool runs; sessions share no engine state.
type Server struct {
	tools      *ToolSet
	logger     *slog.Logger
	serverName string
	version    string
	sessions   *sessionStore
}

// NewServer creates the MCP HTTP server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Tools == nil {
		return nil, errors.New("tool set is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.ServerName
	if name == "" {
		name = "ask-on-slack-mcp"
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	return &Server{
		tools:      cfg.Tools,
		logger:     logger,
		serverName: name,
		version:    version,
		sessions:   newSessionStore(),
	}, nil
}

// RegisterRoutes registers the single MCP endpoint on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
}

// Close tears down all live sessions, typically during server shutdown.
func (s *Server) Close() {
	for _, id := range s.sessions.drain() {
		s.logger.Info("closing session", "session_id", id)
	}
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		// No server-initiated SSE streams
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, GET, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleDelete terminates a session. A terminated identifier is never
// reinstated; later requests bearing it are rejected like any unknown id.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" || !s.sessions.delete(sessionID) {
		s.sendError(w, http.StatusBadRequest, nil, JSONRPCBadSession, badSessionMessage)
		return
	}
	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("uncaught failure during request dispatch", "panic", rec)
			s.sendError(w, http.StatusInternalServerError, nil, JSONRPCInternalError, "Internal server error")
		}
	}()

	sessionID := r.Header.Get("Mcp-Session-Id")
	protoVersion := r.Header.Get("Mcp-Protocol-Version")

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendError(w, http.StatusOK, nil, JSONRPCParseError, "failed to read request body")
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendError(w, http.StatusOK, nil, JSONRPCInvalidRequest, "request body too large")
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, http.StatusOK, nil, JSONRPCParseError, "invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" {
		s.sendError(w, http.StatusOK, req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
		return
	}

	isInitialize := req.Method == "initialize"
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	if !isInitialize && protoVersion != "" && !supportedProtocolVersions[protoVersion] {
		s.sendError(w, http.StatusBadRequest, req.ID, JSONRPCInvalidRequest, "unsupported MCP-Protocol-Version")
		return
	}

	// Session framing: initialize without an id creates a session; any
	// request carrying an id must name a live session or no tool runs.
	var sess *session
	if sessionID != "" {
		var ok bool
		sess, ok = s.sessions.get(sessionID)
		if !ok {
			s.sendError(w, http.StatusBadRequest, req.ID, JSONRPCBadSession, badSessionMessage)
			return
		}
	} else if !isInitialize {
		s.sendError(w, http.StatusBadRequest, req.ID, JSONRPCBadSession, badSessionMessage)
		return
	}

	// Notifications are accepted with no body.
	if isNotification {
		if !strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	s.logger.Debug("MCP request", "method", req.Method, "session_id", sessionID)

	switch req.Method {
	case "initialize":
		// A live session re-sending initialize is a protocol error, not a
		// session error.
		if sess != nil {
			s.sendError(w, http.StatusBadRequest, req.ID, JSONRPCInvalidRequest, "Invalid Request: Server already initialized")
			return
		}
		s.handleInitialize(w, req)
	case "tools/list":
		s.sendResult(w, req.ID, MCPListToolsResult{Tools: s.tools.List()})
	case "tools/call":
		s.handleToolsCall(w, r, req, sess)
	default:
		s.sendError(w, http.StatusOK, req.ID, JSONRPCMethodNotFound, "method not found")
	}
}

// handleInitialize creates a session and hands its identifier back in the
// Mcp-Session-Id response header.
func (s *Server) handleInitialize(w http.ResponseWriter, req JSONRPCRequest) {
	sess := s.sessions.create(latestProtocolVersion)
	s.logger.Info("MCP session created", "session_id", sess.id)

	w.Header().Set("Mcp-Session-Id", sess.id)
	s.sendResult(w, req.ID, map[string]any{
		"protocolVersion": latestProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.serverName,
			"version": s.version,
		},
	})
}

func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, req JSONRPCRequest, sess *session) {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(w, http.StatusOK, req.ID, JSONRPCInvalidParams, "invalid params")
			return
		}
	}
	if params.Name == "" {
		s.sendError(w, http.StatusOK, req.ID, JSONRPCInvalidParams, "tool name is required")
		return
	}

	requestID := uuid.New().String()
	s.logger.Debug("tools/call", "tool_name", params.Name, "request_id", requestID)

	// The call stops when the caller disconnects or the session is
	// terminated, whichever happens first.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(sess.ctx, cancel)
	defer stop()

	result, err := s.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			s.sendError(w, http.StatusOK, req.ID, JSONRPCInvalidParams, "tool not found")
			return
		}
		s.logger.Error("tool dispatch failed", "tool_name", params.Name, "request_id", requestID, "error", err)
		s.sendError(w, http.StatusOK, req.ID, JSONRPCInternalError, "Internal server error")
		return
	}

	s.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
		"is_error", result.IsError,
	)
	s.sendResult(w, req.ID, result)
}

// sendResult sends a successful JSON-RPC response.
func (s *Server) sendResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendError sends a JSON-RPC error response with the given HTTP status.
// http.StatusOK means the JSON-RPC layer failed but the transport did not.
func (s *Server) sendError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string) {
	if id == nil {
		id = json.RawMessage("null")
	}
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
