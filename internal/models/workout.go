package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags which workout variant a record carries.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind maps a form/type value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	default:
		return "", fmt.Errorf("unknown workout type %q", s)
	}
}

// Title returns the kind with its first letter upper-cased ("Running").
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair is a finite position on the globe.
func (c Coords) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Running holds the running-only fields.
type Running struct {
	CadenceSPM   int     `json:"cadence_spm"`
	PaceMinPerKm float64 `json:"pace_min_per_km"`
}

// Cycling holds the cycling-only fields. Elevation gain may be negative.
type Cycling struct {
	ElevationGainM float64 `json:"elevation_gain_m"`
	SpeedKmPerH    float64 `json:"speed_km_per_h"`
}

// Workout is a single recorded workout. Exactly one of Running or Cycling is
// set, matching Kind. Derived metrics and the description are computed once
// by the constructors and stored as data; only InteractionCount changes after
// construction.
type Workout struct {
	ID               string    `json:"id"`
	Kind             Kind      `json:"type"`
	CreatedAt        time.Time `json:"created_at"`
	Coords           Coords    `json:"coords"`
	DistanceKm       float64   `json:"distance_km"`
	DurationMin      float64   `json:"duration_min"`
	Description      string    `json:"description"`
	InteractionCount int       `json:"interaction_count"`

	Running *Running `json:"running,omitempty"`
	Cycling *Cycling `json:"cycling,omitempty"`
}

// newID returns a time-ordered UUIDv7, falling back to a random v4.
var newID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRunning builds a running workout. Inputs are assumed validated.
func NewRunning(now time.Time, coords Coords, distanceKm, durationMin float64, cadenceSPM int) *Workout {
	w := newWorkout(KindRunning, now, coords, distanceKm, durationMin)
	w.Running = &Running{
		CadenceSPM:   cadenceSPM,
		PaceMinPerKm: durationMin / distanceKm,
	}
	return w
}

// NewCycling builds a cycling workout. Inputs are assumed validated.
func NewCycling(now time.Time, coords Coords, distanceKm, durationMin, elevationGainM float64) *Workout {
	w := newWorkout(KindCycling, now, coords, distanceKm, durationMin)
	w.Cycling = &Cycling{
		ElevationGainM: elevationGainM,
		SpeedKmPerH:    distanceKm / (durationMin / 60),
	}
	return w
}

func newWorkout(kind Kind, now time.Time, coords Coords, distanceKm, durationMin float64) *Workout {
	return &Workout{
		ID:          newID(),
		Kind:        kind,
		CreatedAt:   now,
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Description: Describe(kind, now),
	}
}

// Describe formats the list/popup title, e.g. "Running on April 14".
func Describe(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), t.Month(), t.Day())
}

// RecordInteraction counts one selection of the workout in the list.
func (w *Workout) RecordInteraction() {
	w.InteractionCount++
}

// Icon returns the emoji shown next to the workout in the list and popup.
func (w *Workout) Icon() string {
	switch w.Kind {
	case KindRunning:
		return "🏃‍♂️"
	case KindCycling:
		return "🚴‍♀️"
	default:
		return ""
	}
}

// Validate checks the structural invariants of a record that did not come
// from a constructor, such as one decoded from storage.
func (w *Workout) Validate() error {
	if _, err := uuid.Parse(w.ID); err != nil {
		return fmt.Errorf("workout: id %q is not a UUID", w.ID)
	}
	switch w.Kind {
	case KindRunning:
		if w.Running == nil || w.Cycling != nil {
			return fmt.Errorf("workout %s: running record must carry running fields only", w.ID)
		}
	case KindCycling:
		if w.Cycling == nil || w.Running != nil {
			return fmt.Errorf("workout %s: cycling record must carry cycling fields only", w.ID)
		}
	default:
		return fmt.Errorf("workout %s: unknown type %q", w.ID, w.Kind)
	}
	if w.CreatedAt.IsZero() {
		return fmt.Errorf("workout %s: missing creation time", w.ID)
	}
	if w.Description == "" {
		return fmt.Errorf("workout %s: missing description", w.ID)
	}
	if !w.Coords.Valid() {
		return fmt.Errorf("workout %s: coordinates %v out of range", w.ID, w.Coords)
	}
	if w.DistanceKm <= 0 || w.DurationMin <= 0 {
		return fmt.Errorf("workout %s: distance and duration must be positive", w.ID)
	}
	if w.InteractionCount < 0 {
		return fmt.Errorf("workout %s: negative interaction count", w.ID)
	}
	return nil
}

// Clone returns a deep copy, so callers can hand records out without sharing
// the payload pointers.
func (w *Workout) Clone() Workout {
	c := *w
	if w.Running != nil {
		r := *w.Running
		c.Running = &r
	}
	if w.Cycling != nil {
		cy := *w.Cycling
		c.Cycling = &cy
	}
	return c
}
