// Package ui renders workouts into the fragments the browser inserts: a list
// entry and a map marker with its popup.
package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/claude/trailbook/internal/models"
)

var entryTmpl = template.Must(template.New("entry").Parse(`<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Description}}</h2>
  <div class="workout__details">
    <span class="workout__icon">{{.Icon}}</span>
    <span class="workout__value">{{.Distance}}</span>
    <span class="workout__unit">km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⏱</span>
    <span class="workout__value">{{.Duration}}</span>
    <span class="workout__unit">min</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{.Rate}}</span>
    <span class="workout__unit">{{.RateUnit}}</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">{{.ExtraIcon}}</span>
    <span class="workout__value">{{.Extra}}</span>
    <span class="workout__unit">{{.ExtraUnit}}</span>
  </div>
</li>
`))

type entryData struct {
	Kind        models.Kind
	ID          string
	Description string
	Icon        string
	Distance    string
	Duration    string
	Rate        string
	RateUnit    string
	ExtraIcon   string
	Extra       string
	ExtraUnit   string
}

// Entry is one rendered list item.
type Entry struct {
	ID   string        `json:"id"`
	HTML template.HTML `json:"html"`
}

// Marker is a map marker request.
type Marker struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	IconClass  string  `json:"icon_class"`
	PopupClass string  `json:"popup_class"`
	PopupText  string  `json:"popup_text"`
}

// RenderEntry builds the list item for w.
func RenderEntry(w models.Workout) (Entry, error) {
	d := entryData{
		Kind:        w.Kind,
		ID:          w.ID,
		Description: w.Description,
		Icon:        w.Icon(),
		Distance:    formatNumber(w.DistanceKm),
		Duration:    formatNumber(w.DurationMin),
	}
	switch w.Kind {
	case models.KindRunning:
		d.Rate, d.RateUnit = strconv.FormatFloat(w.Running.PaceMinPerKm, 'f', 1, 64), "min/km"
		d.ExtraIcon, d.Extra, d.ExtraUnit = "🦶🏼", strconv.Itoa(w.Running.CadenceSPM), "spm"
	case models.KindCycling:
		d.Rate, d.RateUnit = strconv.FormatFloat(w.Cycling.SpeedKmPerH, 'f', 1, 64), "km/h"
		d.ExtraIcon, d.Extra, d.ExtraUnit = "⛰", formatNumber(w.Cycling.ElevationGainM), "m"
	default:
		return Entry{}, fmt.Errorf("rendering workout %s: unknown type %q", w.ID, w.Kind)
	}

	var buf bytes.Buffer
	if err := entryTmpl.Execute(&buf, d); err != nil {
		return Entry{}, fmt.Errorf("rendering workout %s: %w", w.ID, err)
	}
	return Entry{ID: w.ID, HTML: template.HTML(buf.String())}, nil
}

// RenderMarker builds the marker and popup for w.
func RenderMarker(w models.Workout) Marker {
	return Marker{
		ID:         w.ID,
		Lat:        w.Coords.Lat,
		Lng:        w.Coords.Lng,
		IconClass:  "marker--" + string(w.Kind),
		PopupClass: string(w.Kind) + "-popup",
		PopupText:  PopupText(w),
	}
}

// PopupText is the icon followed by the description.
func PopupText(w models.Workout) string {
	return w.Icon() + " " + w.Description
}

// formatNumber prints user-entered quantities the way they were typed:
// integers without a decimal point, fractions at full precision.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
