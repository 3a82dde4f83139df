package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/claude/trailbook/internal/models"
)

var created = time.Date(2026, time.May, 2, 7, 15, 0, 0, time.UTC)

func sampleWorkouts() []models.Workout {
	r := models.NewRunning(created, models.Coords{Lat: 51.5, Lng: -0.12}, 5, 30, 180)
	r.RecordInteraction()
	c := models.NewCycling(created.Add(time.Hour), models.Coords{Lat: 46.2, Lng: 6.1}, 27, 95, -40)
	return []models.Workout{r.Clone(), c.Clone()}
}

// assertSameWorkouts compares field values; CreatedAt is compared with Equal.
func assertSameWorkouts(t *testing.T, got, want []models.Workout) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.Coords != w.Coords ||
			g.DistanceKm != w.DistanceKm || g.DurationMin != w.DurationMin ||
			g.Description != w.Description || g.InteractionCount != w.InteractionCount {
			t.Errorf("workout %d = %+v, want %+v", i, g, w)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("workout %d createdAt = %v, want %v", i, g.CreatedAt, w.CreatedAt)
		}
		switch w.Kind {
		case models.KindRunning:
			if *g.Running != *w.Running {
				t.Errorf("workout %d running = %+v, want %+v", i, *g.Running, *w.Running)
			}
		case models.KindCycling:
			if *g.Cycling != *w.Cycling {
				t.Errorf("workout %d cycling = %+v, want %+v", i, *g.Cycling, *w.Cycling)
			}
		}
	}
}

// TestRoundTrip verifies LoadAll reproduces the field values passed to SaveAll.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(NewMemory(), "")
	want := sampleWorkouts()

	if err := p.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameWorkouts(t, got, want)
}

// TestSaveIdempotent verifies saving twice without mutation writes identical content.
func TestSaveIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	p := NewPersister(kv, "")
	ws := sampleWorkouts()

	if err := p.SaveAll(ctx, ws); err != nil {
		t.Fatal(err)
	}
	first, _, _ := kv.Get(ctx, DefaultKey)
	if err := p.SaveAll(ctx, ws); err != nil {
		t.Fatal(err)
	}
	second, _, _ := kv.Get(ctx, DefaultKey)
	if first != second {
		t.Errorf("content changed between saves:\n%s\n%s", first, second)
	}
}

// TestLoadAbsent verifies a missing key is "no data", not an error.
func TestLoadAbsent(t *testing.T) {
	got, err := NewPersister(NewMemory(), "").LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d workouts, want 0", len(got))
	}
}

// validRecord is one well-formed persisted running workout.
const validRecord = `{"type":"running","id":"0190b7a2-0000-7000-8000-000000000001",` +
	`"createdAt":"2026-05-02T07:15:00Z","coordinates":[10,20],"distanceKm":5,"durationMin":30,` +
	`"description":"Running on May 2","interactionCount":0,"cadenceSpm":180,"paceMinPerKm":6}`

// TestDecodeValidRecord verifies the baseline record the corrupt cases are derived from loads.
func TestDecodeValidRecord(t *testing.T) {
	got, err := Decode([]byte("[" + validRecord + "]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Coords != (models.Coords{Lat: 10, Lng: 20}) {
		t.Errorf("decoded = %+v", got)
	}
}

// TestLoadCorrupt verifies unparseable or inconsistent data is reported as ErrCorrupt.
func TestLoadCorrupt(t *testing.T) {
	mutate := func(old, new string) string {
		return "[" + strings.Replace(validRecord, old, new, 1) + "]"
	}
	cases := map[string]string{
		"not json":              `{"broken`,
		"wrong shape":           `{"type":"running"}`,
		"unknown type":          mutate(`"type":"running"`, `"type":"rowing"`),
		"missing payload":       mutate(`,"cadenceSpm":180,"paceMinPerKm":6`, ``),
		"zero distance":         mutate(`"distanceKm":5`, `"distanceKm":0`),
		"one coordinate":        mutate(`"coordinates":[10,20]`, `"coordinates":[10]`),
		"three coordinates":     mutate(`"coordinates":[10,20]`, `"coordinates":[10,20,30]`),
		"missing coordinates":   mutate(`"coordinates":[10,20],`, ``),
		"latitude out of range": mutate(`"coordinates":[10,20]`, `"coordinates":[95,20]`),
		"missing createdAt":     mutate(`"createdAt":"2026-05-02T07:15:00Z",`, ``),
		"missing description":   mutate(`"description":"Running on May 2",`, ``),
		"negative interactions": mutate(`"interactionCount":0`, `"interactionCount":-4`),
		"non-uuid id":           mutate(`"id":"0190b7a2-0000-7000-8000-000000000001"`, `"id":"a"`),
		"missing id":            mutate(`"id":"0190b7a2-0000-7000-8000-000000000001",`, ``),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			kv := NewMemory()
			kv.Set(context.Background(), DefaultKey, value)
			_, err := NewPersister(kv, "").LoadAll(context.Background())
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("err = %v, want ErrCorrupt", err)
			}
		})
	}
}

// TestPersistedLayout verifies the JSON field names and per-type fields.
func TestPersistedLayout(t *testing.T) {
	data, err := Encode(sampleWorkouts())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, field := range []string{
		`"type":"running"`, `"type":"cycling"`, `"coordinates":[51.5,-0.12]`,
		`"distanceKm":5`, `"durationMin":30`, `"description":"Running on May 2"`,
		`"interactionCount":1`, `"cadenceSpm":180`, `"paceMinPerKm":6`,
		`"elevationGainM":-40`, `"speedKmPerH":`, `"createdAt":"2026-05-02T07:15:00Z"`,
	} {
		if !strings.Contains(s, field) {
			t.Errorf("encoded data missing %s:\n%s", field, s)
		}
	}
	if strings.Count(s, "cadenceSpm") != 1 || strings.Count(s, "elevationGainM") != 1 {
		t.Errorf("type-specific fields leaked across records:\n%s", s)
	}
}

// TestClear verifies Clear removes the key so the next load is empty.
func TestClear(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(NewMemory(), "custom")
	if err := p.SaveAll(ctx, sampleWorkouts()); err != nil {
		t.Fatal(err)
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := p.LoadAll(ctx)
	if err != nil || len(got) != 0 {
		t.Errorf("after clear: %d workouts, err %v", len(got), err)
	}
}

// TestLoadNull verifies a stored JSON null loads as an empty list.
func TestLoadNull(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	if err := kv.Set(ctx, DefaultKey, "null"); err != nil {
		t.Fatal(err)
	}
	got, err := NewPersister(kv, "").LoadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d workouts, want 0", len(got))
	}
}
