// Package mcp provides a Model Context Protocol interface to the
// gomoku session server.
//
// The package implements a thin MCP client that proxies all requests
// to the REST API. Tools are read-only: gameplay happens over the
// websocket transport, and MCP clients observe rooms and server
// health.
//
// Tools:
//   - list_rooms: list active rooms, newest activity first
//   - room_state: render one room's board and status as text
//   - server_stats: room and connection counters
//
// The underlying MCP server is exposed via GetMCPServer so the caller
// can serve it over stdio or mount it at an HTTP endpoint.
package mcp
