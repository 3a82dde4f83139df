// Package export converts workouts into formats other tools can import.
package export

import (
	"fmt"
	"strconv"

	"github.com/claude/trailbook/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
)

// GPX renders every workout as a waypoint at its location. The waypoint name
// is the description; the comment carries the workout's numbers.
func GPX(workouts []models.Workout, creator string) ([]byte, error) {
	g := &gpx.GPX{
		Creator: creator,
		Name:    "trailbook workouts",
	}
	for _, w := range workouts {
		p := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  w.Coords.Lat,
				Longitude: w.Coords.Lng,
			},
			Timestamp:   w.CreatedAt.UTC(),
			Name:        w.Description,
			Description: w.ID,
			Type:        string(w.Kind),
			Comment:     summary(w),
		}
		g.Waypoints = append(g.Waypoints, p)
	}

	data, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encoding gpx: %w", err)
	}
	return data, nil
}

func summary(w models.Workout) string {
	base := num(w.DistanceKm) + " km, " + num(w.DurationMin) + " min"
	switch w.Kind {
	case models.KindRunning:
		return base + ", " + strconv.FormatFloat(w.Running.PaceMinPerKm, 'f', 1, 64) + " min/km, " +
			strconv.Itoa(w.Running.CadenceSPM) + " spm"
	case models.KindCycling:
		return base + ", " + strconv.FormatFloat(w.Cycling.SpeedKmPerH, 'f', 1, 64) + " km/h, " +
			num(w.Cycling.ElevationGainM) + " m"
	default:
		return base
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
