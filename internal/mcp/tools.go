package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts, oldest first. Each has type, coordinates, distance (km), duration (min), description, and pace (running) or speed (cycling)."),
	mcp.WithString("type", mcp.Description("Only return this workout type."), mcp.Enum("running", "cycling")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log a workout at a map location. Distance and duration must be positive. Running needs a positive whole cadence (steps/min); cycling needs an elevation gain in meters (may be negative)."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Workout type"), mcp.Enum("running", "cycling")),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude in degrees")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude in degrees")),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("cadence", mcp.Description("Running cadence in steps/min")),
	mcp.WithNumber("elevation", mcp.Description("Cycling elevation gain in meters")),
)

var toolFocusWorkout = mcp.NewTool("focus_workout",
	mcp.WithDescription("Pan the map to a workout, as if its list entry was clicked. Counts one interaction."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID")),
)

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if filter := req.GetString("type", ""); filter != "" {
		kind, err := models.ParseKind(filter)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filtered := workouts[:0]
		for _, w := range workouts {
			if w.Kind == kind {
				filtered = append(filtered, w)
			}
		}
		workouts = filtered
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	w, found, err := h.ds.Workout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("lat parameter is required"), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("lng parameter is required"), nil
	}
	distance, err := req.RequireFloat("distance")
	if err != nil {
		return mcp.NewToolResultError("distance parameter is required"), nil
	}
	duration, err := req.RequireFloat("duration")
	if err != nil {
		return mcp.NewToolResultError("duration parameter is required"), nil
	}

	in := controller.FormInput{
		Type:     kind,
		Distance: formatArg(distance),
		Duration: formatArg(duration),
	}
	args := req.GetArguments()
	if _, ok := args["cadence"]; ok {
		in.Cadence = formatArg(req.GetFloat("cadence", 0))
	}
	if _, ok := args["elevation"]; ok {
		in.Elevation = formatArg(req.GetFloat("elevation", 0))
	}

	w, err := h.ds.Record(ctx, models.Coords{Lat: lat, Lng: lng}, in)
	if errors.Is(err, controller.ErrInvalidInput) {
		return mcp.NewToolResultError(controller.AlertInvalidInput + " (" + err.Error() + ")"), nil
	}
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("log failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) focusWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	w, found, err := h.ds.Focus(ctx, id)
	if err != nil {
		h.log.Error("mcp focus_workout", "error", err)
		return mcp.NewToolResultError("focus failed: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// formatArg renders a numeric tool argument the way a form field holds it.
func formatArg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
