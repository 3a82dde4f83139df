// Package controller mediates between the map, the workout form and list, and
// the workout store. Every exported method is one UI event; events are
// serialized so the controller behaves like a single event loop.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/trailbook/internal/models"
	"github.com/claude/trailbook/internal/observability"
	"github.com/claude/trailbook/internal/storage"
	"github.com/claude/trailbook/internal/store"
	"github.com/claude/trailbook/internal/ui"
)

// User-facing alert texts.
const (
	AlertInvalidInput       = "Inputs have to be positive numbers!"
	AlertLocationFailed     = "Could not get your location"
	AlertSaveFailed         = "Could not save your workouts"
	DefaultZoom             = 13
	DefaultFormRestoreDelay = time.Second
)

var (
	// ErrNoPendingLocation is returned by Submit when no map click opened the form.
	ErrNoPendingLocation = errors.New("no location selected on the map")
	// ErrMapNotReady is returned for map events before the map is initialized.
	ErrMapNotReady = errors.New("map is not ready")
)

// MapWidget is the external map.
type MapWidget interface {
	SetView(center models.Coords, zoom int, animate bool)
	AddMarker(m ui.Marker)
}

// ListView is the form and workout list.
type ListView interface {
	InsertEntry(e ui.Entry)
	ShowForm()
	HideForm()
	// RestoreForm undoes the display reset HideForm applies for the hide animation.
	RestoreForm()
	ClearForm()
	ShowTypeFields(kind models.Kind)
	// Reload discards everything rendered so far, like a page reload.
	Reload()
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// Scheduler runs f once after d. There is no cancellation.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Options wires a Controller. Persister, Map, View and Alerter are required.
type Options struct {
	Persister *storage.Persister
	Store     *store.Store
	Map       MapWidget
	View      ListView
	Alerter   Alerter
	Scheduler Scheduler
	Now       func() time.Time
	Log       *slog.Logger

	Zoom             int
	FormRestoreDelay time.Duration
}

type formState int

const (
	formIdle formState = iota
	formOpen
)

func (s formState) String() string {
	if s == formOpen {
		return "form_open"
	}
	return "idle"
}

type mapState int

const (
	mapPending mapState = iota
	mapReady
	mapFailed
)

func (s mapState) String() string {
	switch s {
	case mapReady:
		return "ready"
	case mapFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Controller owns the workout store and drives the views.
type Controller struct {
	mu sync.Mutex

	persister *storage.Persister
	store     *store.Store
	mapw      MapWidget
	view      ListView
	alerter   Alerter
	scheduler Scheduler
	now       func() time.Time
	log       *slog.Logger

	zoom         int
	restoreDelay time.Duration

	form     formState
	pending  models.Coords
	mapState mapState
}

// New creates a Controller. Call Start to hydrate from storage.
func New(opts Options) *Controller {
	c := &Controller{
		persister:    opts.Persister,
		store:        opts.Store,
		mapw:         opts.Map,
		view:         opts.View,
		alerter:      opts.Alerter,
		scheduler:    opts.Scheduler,
		now:          opts.Now,
		log:          opts.Log,
		zoom:         opts.Zoom,
		restoreDelay: opts.FormRestoreDelay,
	}
	if c.store == nil {
		c.store = store.New()
	}
	if c.scheduler == nil {
		c.scheduler = timerScheduler{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.zoom == 0 {
		c.zoom = DefaultZoom
	}
	if c.restoreDelay == 0 {
		c.restoreDelay = DefaultFormRestoreDelay
	}
	return c
}

// Start loads persisted workouts into the store and renders one list entry
// per workout. Markers wait for the map. Corrupt data leaves the store empty
// and is returned wrapping storage.ErrCorrupt.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrate(ctx)
}

func (c *Controller) hydrate(ctx context.Context) error {
	loaded, err := c.persister.LoadAll(ctx)
	if err != nil {
		c.store.Replace(nil)
		observability.SetStoredWorkouts(0)
		if errors.Is(err, storage.ErrCorrupt) {
			observability.RecordCorruptLoad()
		} else {
			observability.RecordPersistenceError("load")
		}
		return err
	}

	c.store.Replace(loaded)
	observability.SetStoredWorkouts(c.store.Len())
	for _, w := range c.store.All() {
		c.renderEntry(w)
	}
	if c.mapState == mapReady {
		c.renderMarkers()
	}
	c.log.Info("workouts loaded", "count", len(loaded), "key", c.persister.Key())
	return nil
}

// Locate starts a one-shot location lookup. The result arrives through
// LocationResolved or LocationFailed; there is no timeout or retry.
func (c *Controller) Locate(ctx context.Context, loc Locator) {
	go func() {
		coords, err := loc.Locate(ctx)
		if err != nil {
			c.LocationFailed(err)
			return
		}
		c.LocationResolved(coords)
	}()
}

// LocationResolved initializes the map at coords and renders a marker for
// every stored workout. Only the first location result is honored.
func (c *Controller) LocationResolved(coords models.Coords) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapState != mapPending {
		c.log.Debug("ignoring location result", "map", c.mapState.String())
		return
	}
	c.mapw.SetView(coords, c.zoom, false)
	c.mapState = mapReady
	c.renderMarkers()
	c.log.Info("map ready", "lat", coords.Lat, "lng", coords.Lng, "markers", c.store.Len())
}

// LocationFailed alerts the user and leaves the map uninitialized for the
// rest of the session.
func (c *Controller) LocationFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapState != mapPending {
		return
	}
	c.mapState = mapFailed
	c.log.Warn("location unavailable", "error", err)
	c.alerter.Alert(AlertLocationFailed)
}

// MapClicked opens the form with coords as the pending workout location.
func (c *Controller) MapClicked(coords models.Coords) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapState != mapReady {
		return ErrMapNotReady
	}
	if !coords.Valid() {
		return errCoordsOutOfRange
	}
	c.openForm(coords)
	return nil
}

func (c *Controller) openForm(coords models.Coords) {
	c.pending = coords
	c.form = formOpen
	c.view.ShowForm()
}

// ToggleType shows the input field specific to kind. The form state is unchanged.
func (c *Controller) ToggleType(kind models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ShowTypeFields(kind)
}

// Submit validates the form and records a workout at the pending location.
// Invalid input alerts the user, keeps the form open and returns an error
// wrapping ErrInvalidInput; nothing is stored or persisted.
func (c *Controller) Submit(ctx context.Context, in FormInput) (models.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form != formOpen {
		return models.Workout{}, ErrNoPendingLocation
	}
	p, err := c.validate(c.pending, in)
	if err != nil {
		return models.Workout{}, err
	}
	return c.create(ctx, c.pending, p), nil
}

// Record is a map click at coords followed by a submit, as one event. The
// input is validated first, so a rejected record leaves any open form and
// its pending location untouched. While the map is still pending the
// workout gets its marker once the map is ready; after a location failure
// there is no map to pin it to and ErrMapNotReady is returned.
func (c *Controller) Record(ctx context.Context, coords models.Coords, in FormInput) (models.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapState == mapFailed {
		return models.Workout{}, ErrMapNotReady
	}
	p, err := c.validate(coords, in)
	if err != nil {
		return models.Workout{}, err
	}
	c.openForm(coords)
	return c.create(ctx, coords, p), nil
}

// validate parses the form; a rejection is alerted and counted.
func (c *Controller) validate(coords models.Coords, in FormInput) (parsedInput, error) {
	var (
		p   parsedInput
		err error
	)
	if coords.Valid() {
		p, err = in.parse()
	} else {
		err = errCoordsOutOfRange
	}
	if err != nil {
		observability.RecordSubmissionRejected()
		c.log.Info("workout rejected", "error", err)
		c.alerter.Alert(AlertInvalidInput)
	}
	return p, err
}

func (c *Controller) create(ctx context.Context, coords models.Coords, p parsedInput) models.Workout {
	var w *models.Workout
	switch p.kind {
	case models.KindRunning:
		w = models.NewRunning(c.now(), coords, p.distanceKm, p.durationM, p.cadence)
	case models.KindCycling:
		w = models.NewCycling(c.now(), coords, p.distanceKm, p.durationM, p.elevationM)
	}

	c.store.Add(w)
	observability.RecordWorkoutCreated(string(w.Kind))
	observability.SetStoredWorkouts(c.store.Len())

	c.renderEntry(*w)
	if c.mapState == mapReady {
		c.mapw.AddMarker(ui.RenderMarker(*w))
	}
	c.hideForm()
	c.save(ctx)

	c.log.Info("workout created", "id", w.ID, "type", w.Kind, "description", w.Description)
	return w.Clone()
}

func (c *Controller) hideForm() {
	c.view.ClearForm()
	c.view.HideForm()
	c.scheduler.AfterFunc(c.restoreDelay, c.view.RestoreForm)
	c.form = formIdle
}

func (c *Controller) save(ctx context.Context) {
	if err := c.persister.SaveAll(ctx, c.store.All()); err != nil {
		observability.RecordPersistenceError("save")
		c.log.Error("persisting workouts", "error", err)
		c.alerter.Alert(AlertSaveFailed)
	}
}

// EntryClicked handles a click on the list entry with the given id: the map
// pans to the workout and its interaction count goes up by one. An unknown
// id is a no-op and reports false.
func (c *Controller) EntryClicked(id string) (models.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.store.FindByID(id)
	if !ok {
		c.log.Debug("entry click without matching workout", "id", id)
		return models.Workout{}, false
	}
	if c.mapState == mapReady {
		c.mapw.SetView(w.Coords, c.zoom, true)
	}
	w.RecordInteraction()
	observability.RecordInteraction()
	return w.Clone(), true
}

// Reset deletes the persisted workouts, then reloads the view and the store
// from storage the same way startup does.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persister.Clear(ctx); err != nil {
		observability.RecordPersistenceError("clear")
		return fmt.Errorf("reset: %w", err)
	}
	c.view.Reload()
	c.form = formIdle
	c.pending = models.Coords{}
	if err := c.hydrate(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	c.log.Info("workouts reset")
	return nil
}

// Workouts returns a copy of every stored workout in insertion order.
func (c *Controller) Workouts() []models.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// Workout returns a copy of the stored workout with the given id.
func (c *Controller) Workout(id string) (models.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.store.FindByID(id)
	if !ok {
		return models.Workout{}, false
	}
	return w.Clone(), true
}

// Status describes where the controller is in its state machine.
type Status struct {
	Form     string         `json:"form"`
	Map      string         `json:"map"`
	Pending  *models.Coords `json:"pending,omitempty"`
	Workouts int            `json:"workouts"`
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{Form: c.form.String(), Map: c.mapState.String(), Workouts: c.store.Len()}
	if c.form == formOpen {
		p := c.pending
		s.Pending = &p
	}
	return s
}

func (c *Controller) renderEntry(w models.Workout) {
	e, err := ui.RenderEntry(w)
	if err != nil {
		c.log.Error("rendering workout", "id", w.ID, "error", err)
		return
	}
	c.view.InsertEntry(e)
}

func (c *Controller) renderMarkers() {
	for _, w := range c.store.All() {
		c.mapw.AddMarker(ui.RenderMarker(w))
	}
}
