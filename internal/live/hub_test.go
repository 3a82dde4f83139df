package live

import (
	"testing"

	"github.com/claude/trailbook/internal/models"
	"github.com/claude/trailbook/internal/ui"
)

// TestEntriesInDOMOrder verifies each insert lands right after the form.
func TestEntriesInDOMOrder(t *testing.T) {
	h := NewHub(0)
	h.InsertEntry(ui.Entry{ID: "first"})
	h.InsertEntry(ui.Entry{ID: "second"})

	s := h.Snapshot()
	if len(s.Entries) != 2 || s.Entries[0].ID != "second" || s.Entries[1].ID != "first" {
		t.Errorf("entries = %+v, want second, first", s.Entries)
	}
}

// TestSubscribeReceivesEvents verifies subscribers see updates in order.
func TestSubscribeReceivesEvents(t *testing.T) {
	h := NewHub(8)
	events, cancel := h.Subscribe()
	defer cancel()

	h.SetView(models.Coords{Lat: 1, Lng: 2}, 13, false)
	h.AddMarker(ui.Marker{ID: "m"})
	h.Alert("boom")

	for _, want := range []string{EventSetView, EventMarker, EventAlert} {
		ev := <-events
		if ev.Type != want {
			t.Errorf("event = %s, want %s", ev.Type, want)
		}
	}
	s := h.Snapshot()
	if !s.Map.Ready || s.Map.Zoom != 13 || len(s.Markers) != 1 || s.LastAlert != "boom" {
		t.Errorf("snapshot = %+v", s)
	}
}

// TestSlowSubscriberDoesNotBlock verifies a full buffer drops events.
func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(1)
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		h.ShowForm()
	}
}

// TestCancelClosesChannel verifies cancel unregisters and closes, and is idempotent.
func TestCancelClosesChannel(t *testing.T) {
	h := NewHub(1)
	events, cancel := h.Subscribe()
	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Error("channel still open after cancel")
	}
	h.Alert("after cancel")
}

// TestFormLifecycle verifies hide/restore display handling and field toggles.
func TestFormLifecycle(t *testing.T) {
	h := NewHub(0)
	if s := h.Snapshot(); !s.Form.Hidden || s.Form.Fields != models.KindRunning {
		t.Fatalf("initial form = %+v", s.Form)
	}
	h.ShowForm()
	h.ShowTypeFields(models.KindCycling)
	h.HideForm()
	if s := h.Snapshot(); !s.Form.Hidden || s.Form.Display != "none" || s.Form.Fields != models.KindCycling {
		t.Errorf("after hide = %+v", s.Form)
	}
	h.RestoreForm()
	if s := h.Snapshot(); s.Form.Display != "grid" {
		t.Errorf("after restore display = %q", s.Form.Display)
	}
}

// TestReload verifies reload clears entries and markers but keeps the map.
func TestReload(t *testing.T) {
	h := NewHub(0)
	h.SetView(models.Coords{Lat: 3, Lng: 4}, 13, false)
	h.AddMarker(ui.Marker{ID: "m"})
	h.InsertEntry(ui.Entry{ID: "e"})
	h.Reload()

	s := h.Snapshot()
	if len(s.Entries) != 0 || len(s.Markers) != 0 {
		t.Errorf("after reload: %d entries, %d markers", len(s.Entries), len(s.Markers))
	}
	if !s.Map.Ready || s.Map.Center.Lat != 3 {
		t.Errorf("map lost on reload: %+v", s.Map)
	}
}

// TestWatchStartsAfterSnapshot verifies Watch's channel only carries later changes.
func TestWatchStartsAfterSnapshot(t *testing.T) {
	h := NewHub(8)
	h.AddMarker(ui.Marker{ID: "before"})

	snap, events, cancel := h.Watch()
	defer cancel()
	if len(snap.Markers) != 1 || snap.Markers[0].ID != "before" {
		t.Fatalf("snapshot markers = %+v", snap.Markers)
	}
	if len(events) != 0 {
		t.Fatalf("buffered events = %d, want 0", len(events))
	}

	h.AddMarker(ui.Marker{ID: "after"})
	ev := <-events
	if m, ok := ev.Data.(ui.Marker); !ok || m.ID != "after" {
		t.Errorf("event = %+v, want marker after", ev)
	}
}
