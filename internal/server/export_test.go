package server

import (
	"net/http"
	"testing"

	"github.com/tkrajina/gpxgo/gpx"
)

// TestExportGPX verifies the export route returns one waypoint per workout.
func TestExportGPX(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodPost, "/api/v1/record", `{"lat":1,"lng":2,"type":"running","distance":"5","duration":"30","cadence":"180"}`)
	e.do(t, http.MethodPost, "/api/v1/record", `{"lat":3,"lng":4,"type":"cycling","distance":"20","duration":"60","elevation":"0"}`)

	rec := e.do(t, http.MethodGet, "/api/v1/export.gpx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/gpx+xml" {
		t.Errorf("content type = %q", ct)
	}
	parsed, err := gpx.ParseBytes(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Waypoints) != 2 {
		t.Errorf("waypoints = %d, want 2", len(parsed.Waypoints))
	}
}
