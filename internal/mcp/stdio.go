// ABOUTME: MCP stdio transport: newline-delimited JSON-RPC over a duplex stream.
// ABOUTME: One implicit session; shares the tool dispatch core with the HTTP transport.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// StdioServer serves MCP over a single persistent duplex stream, one
// JSON-RPC message per line. Unlike the HTTP transport there is exactly one
// logical session, bound to the stream's lifetime.
type StdioServer struct {
	tools  *ToolSet
	logger *slog.Logger
	in     io.Reader
	out    *json.Encoder
}

// NewStdioServer creates a stdio transport reading requests from in and
// writing responses to out.
func NewStdioServer(tools *ToolSet, logger *slog.Logger, in io.Reader, out io.Writer) *StdioServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioServer{
		tools:  tools,
		logger: logger,
		in:     in,
		out:    json.NewEncoder(out),
	}
}

// Run serves requests until the input stream closes or ctx is cancelled.
// Cancellation mid-call stops the ask's poll loop through the request
// context, so no channel quota is spent after the caller went away.
func (s *StdioServer) Run(ctx context.Context) error {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxRequestBodySize)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *StdioServer) handleLine(ctx context.Context, line []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.respondError(nil, JSONRPCParseError, "invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" {
		s.respondError(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
		return
	}

	// Notifications get no response on this transport either.
	if len(req.ID) == 0 || string(req.ID) == "null" {
		s.logger.Debug("stdio notification", "method", req.Method)
		return
	}

	s.logger.Debug("stdio request", "method", req.Method)

	switch req.Method {
	case "initialize":
		s.respond(req.ID, map[string]any{
			"protocolVersion": latestProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "ask-on-slack-mcp",
				"version": "0.1.0",
			},
		})
	case "tools/list":
		s.respond(req.ID, MCPListToolsResult{Tools: s.tools.List()})
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		s.respondError(req.ID, JSONRPCMethodNotFound, "method not found")
	}
}

func (s *StdioServer) handleToolsCall(ctx context.Context, req JSONRPCRequest) {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.respondError(req.ID, JSONRPCInvalidParams, "invalid params")
			return
		}
	}
	if params.Name == "" {
		s.respondError(req.ID, JSONRPCInvalidParams, "tool name is required")
		return
	}

	result, err := s.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			s.respondError(req.ID, JSONRPCInvalidParams, "tool not found")
			return
		}
		s.logger.Error("tool dispatch failed", "tool_name", params.Name, "error", err)
		s.respondError(req.ID, JSONRPCInternalError, "Internal server error")
		return
	}
	s.respond(req.ID, result)
}

func (s *StdioServer) respond(id json.RawMessage, result any) {
	if err := s.out.Encode(JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}); err != nil {
		s.logger.Warn("failed to write stdio response", "error", err)
	}
}

func (s *StdioServer) respondError(id json.RawMessage, code int, message string) {
	if id == nil {
		id = json.RawMessage("null")
	}
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
	if err := s.out.Encode(resp); err != nil {
		s.logger.Warn("failed to write stdio error response", "error", err)
	}
}
