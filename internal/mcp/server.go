// Package mcp exposes the workout log to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("trailbook", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("trailbook workout log. List running and cycling workouts pinned to map coordinates, log new ones, and focus one on the map."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolFocusWorkout, Handler: h.focusWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workoutsResource},
		server.ServerResource{Resource: resStatus, Handler: h.statusResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resWorkouts = mcp.NewResource(
	"trailbook://workouts",
	"Workouts",
	mcp.WithResourceDescription("Every logged workout in insertion order"),
	mcp.WithMIMEType("application/json"),
)

var resStatus = mcp.NewResource(
	"trailbook://status",
	"Status",
	mcp.WithResourceDescription("Map and form state of the running app"),
	mcp.WithMIMEType("application/json"),
)
