// Package mcp implements the Model Context Protocol surface of ask-on-slack.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This
// package exposes the ask/clarify/acknowledge tools to MCP clients over two
// transports that share one dispatch core: Streamable HTTP and stdio.
//
// # HTTP Transport
//
// The HTTP transport serves JSON-RPC 2.0 on a single endpoint:
//
//   - POST /mcp - initialize, tools/list, tools/call, notifications
//   - DELETE /mcp - terminate the session named by Mcp-Session-Id
//
// GET is rejected with 405; there are no server-initiated streams.
//
// # Sessions
//
// An initialize request carrying no Mcp-Session-Id header creates a session
// and returns its identifier in the response header. Every later request must
// present that identifier. A missing, unknown, or terminated identifier is
// rejected before any tool runs:
//
//	HTTP 400
//	{"jsonrpc":"2.0","id":null,"error":{"code":-32000,
//	 "message":"Bad Request: No valid session ID provided"}}
//
// Terminated identifiers are never reinstated, and terminating a session
// cancels any tool call still in flight on it. Sessions carry no engine
// state, so any number of them can ask concurrently.
//
// # Tool Execution
//
// Clients call tools/call to run a tool:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "ask_the_boss_on_slack",
//	    "arguments": {"question": "Which region do we deploy to?"}
//	  },
//	  "id": 2
//	}
//
// Engine failures (timeout, channel errors, no credentials) come back as
// isError text results prefixed "Error:". Only an unknown tool name or
// malformed params fail at the JSON-RPC layer.
//
// # Stdio Transport
//
// The stdio transport reads one JSON-RPC message per line from its input
// stream and writes one response per line. It has exactly one implicit
// session bound to the stream's lifetime, so no session framing applies.
package mcp
