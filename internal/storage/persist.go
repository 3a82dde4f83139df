package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/trailbook/internal/models"
)

// DefaultKey is the key the workout list is stored under.
const DefaultKey = "workout"

// ErrCorrupt is returned by LoadAll when a value is present but cannot be
// decoded into workouts. Absent data is not an error.
var ErrCorrupt = errors.New("persisted workouts are corrupt")

// Persister serializes the whole workout list to a single KV entry.
type Persister struct {
	kv  KV
	key string
}

// NewPersister returns a Persister writing under key (DefaultKey if empty).
func NewPersister(kv KV, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{kv: kv, key: key}
}

// Key returns the storage key in use.
func (p *Persister) Key() string {
	return p.key
}

// record is the persisted JSON shape of one workout. Only the fields of the
// record's own type are written.
type record struct {
	Type             models.Kind `json:"type"`
	ID               string      `json:"id"`
	CreatedAt        time.Time   `json:"createdAt"`
	Coordinates      []float64   `json:"coordinates"`
	DistanceKm       float64     `json:"distanceKm"`
	DurationMin      float64     `json:"durationMin"`
	Description      string      `json:"description"`
	InteractionCount int         `json:"interactionCount"`

	CadenceSPM     *int     `json:"cadenceSpm,omitempty"`
	PaceMinPerKm   *float64 `json:"paceMinPerKm,omitempty"`
	ElevationGainM *float64 `json:"elevationGainM,omitempty"`
	SpeedKmPerH    *float64 `json:"speedKmPerH,omitempty"`
}

func toRecord(w models.Workout) record {
	r := record{
		Type:             w.Kind,
		ID:               w.ID,
		CreatedAt:        w.CreatedAt,
		Coordinates:      []float64{w.Coords.Lat, w.Coords.Lng},
		DistanceKm:       w.DistanceKm,
		DurationMin:      w.DurationMin,
		Description:      w.Description,
		InteractionCount: w.InteractionCount,
	}
	switch w.Kind {
	case models.KindRunning:
		cadence, pace := w.Running.CadenceSPM, w.Running.PaceMinPerKm
		r.CadenceSPM, r.PaceMinPerKm = &cadence, &pace
	case models.KindCycling:
		elevation, speed := w.Cycling.ElevationGainM, w.Cycling.SpeedKmPerH
		r.ElevationGainM, r.SpeedKmPerH = &elevation, &speed
	}
	return r
}

func (r record) workout() (models.Workout, error) {
	if len(r.Coordinates) != 2 {
		return models.Workout{}, fmt.Errorf("workout %s: coordinates must be [lat, lng], got %d values", r.ID, len(r.Coordinates))
	}
	w := models.Workout{
		ID:               r.ID,
		Kind:             r.Type,
		CreatedAt:        r.CreatedAt,
		Coords:           models.Coords{Lat: r.Coordinates[0], Lng: r.Coordinates[1]},
		DistanceKm:       r.DistanceKm,
		DurationMin:      r.DurationMin,
		Description:      r.Description,
		InteractionCount: r.InteractionCount,
	}
	switch r.Type {
	case models.KindRunning:
		if r.CadenceSPM == nil || r.PaceMinPerKm == nil {
			return w, fmt.Errorf("running workout %s missing cadence or pace", r.ID)
		}
		w.Running = &models.Running{CadenceSPM: *r.CadenceSPM, PaceMinPerKm: *r.PaceMinPerKm}
	case models.KindCycling:
		if r.ElevationGainM == nil || r.SpeedKmPerH == nil {
			return w, fmt.Errorf("cycling workout %s missing elevation or speed", r.ID)
		}
		w.Cycling = &models.Cycling{ElevationGainM: *r.ElevationGainM, SpeedKmPerH: *r.SpeedKmPerH}
	}
	return w, w.Validate()
}

// Encode renders workouts in the persisted layout.
func Encode(workouts []models.Workout) ([]byte, error) {
	records := make([]record, len(workouts))
	for i, w := range workouts {
		records[i] = toRecord(w)
	}
	return json.Marshal(records)
}

// Decode parses the persisted layout. Any failure wraps ErrCorrupt.
func Decode(data []byte) ([]models.Workout, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	workouts := make([]models.Workout, 0, len(records))
	for i, r := range records {
		w, err := r.workout()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

// SaveAll overwrites the stored list with workouts.
func (p *Persister) SaveAll(ctx context.Context, workouts []models.Workout) error {
	data, err := Encode(workouts)
	if err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}
	if err := p.kv.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}

// LoadAll reads the stored list. A missing key yields (nil, nil); content
// that cannot be decoded yields an error wrapping ErrCorrupt.
func (p *Persister) LoadAll(ctx context.Context) ([]models.Workout, error) {
	value, found, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	if !found {
		return nil, nil
	}
	return Decode([]byte(value))
}

// Clear removes the stored list. The in-memory store is untouched; callers
// reload from storage to resynchronize.
func (p *Persister) Clear(ctx context.Context) error {
	if err := p.kv.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	return nil
}
