// Package api provides the HTTP surface of the gomoku session server.
//
// The api package implements:
//   - Read-only REST endpoints for observing rooms
//   - Server statistics for dashboards
//   - WebSocket upgrade mounting at /ws
//   - Health check endpoint
//
// Endpoints:
//
// Observation:
//   - GET /api/rooms - List room snapshots, newest activity first
//   - GET /api/rooms/{id} - Get one room snapshot
//   - GET /api/stats - Room and connection counters
//
// Gameplay:
//   - GET /ws - WebSocket upgrade; all game commands flow over this
//
// Operational:
//   - GET /health - Liveness check
//
// Request/Response Format:
//
// All REST endpoints return JSON. Snapshots returned here carry no seat
// perspective: your_color is absent and pending proposals are visible.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
