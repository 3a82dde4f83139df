package mcp

import (
	"context"

	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/models"
)

// DataSource abstracts the workout controller for MCP tools. Local (in
// process) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	Workouts(ctx context.Context) ([]models.Workout, error)
	Workout(ctx context.Context, id string) (models.Workout, bool, error)
	Record(ctx context.Context, coords models.Coords, in controller.FormInput) (models.Workout, error)
	Focus(ctx context.Context, id string) (models.Workout, bool, error)
	Status(ctx context.Context) (controller.Status, error)
}

// Local serves MCP tools straight from a controller in the same process.
type Local struct {
	Ctrl *controller.Controller
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) Workouts(context.Context) ([]models.Workout, error) {
	return l.Ctrl.Workouts(), nil
}

func (l Local) Workout(_ context.Context, id string) (models.Workout, bool, error) {
	w, ok := l.Ctrl.Workout(id)
	return w, ok, nil
}

func (l Local) Record(ctx context.Context, coords models.Coords, in controller.FormInput) (models.Workout, error) {
	return l.Ctrl.Record(ctx, coords, in)
}

func (l Local) Focus(_ context.Context, id string) (models.Workout, bool, error) {
	w, ok := l.Ctrl.EntryClicked(id)
	return w, ok, nil
}

func (l Local) Status(context.Context) (controller.Status, error) {
	return l.Ctrl.Status(), nil
}
