package controller

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/trailbook/internal/models"
)

// ErrInvalidInput is wrapped by every form validation failure.
var ErrInvalidInput = errors.New("invalid workout input")

// FormInput is the raw content of the workout form fields.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence,omitempty"`
	Elevation string `json:"elevation,omitempty"`
}

var errCoordsOutOfRange = &FieldError{Field: "coordinates", Reason: "must be a latitude in [-90, 90] and a longitude in [-180, 180]"}

// FieldError names the field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

type parsedInput struct {
	kind       models.Kind
	distanceKm float64
	durationM  float64
	cadence    int
	elevationM float64
}

// parse validates the form. Distance and duration must be finite and > 0 for
// both types; running cadence must be a positive whole number; cycling
// elevation must be finite but may have any sign.
func (in FormInput) parse() (parsedInput, error) {
	var p parsedInput
	kind, err := models.ParseKind(in.Type)
	if err != nil {
		return p, &FieldError{Field: "type", Reason: "must be running or cycling"}
	}
	p.kind = kind

	if p.distanceKm, err = positive("distance", in.Distance); err != nil {
		return p, err
	}
	if p.durationM, err = positive("duration", in.Duration); err != nil {
		return p, err
	}

	switch kind {
	case models.KindRunning:
		cadence, err := positive("cadence", in.Cadence)
		if err != nil {
			return p, err
		}
		if cadence != math.Trunc(cadence) || cadence > math.MaxInt32 {
			return p, &FieldError{Field: "cadence", Reason: "must be a whole number"}
		}
		p.cadence = int(cadence)
	case models.KindCycling:
		if p.elevationM, err = finite("elevation", in.Elevation); err != nil {
			return p, err
		}
	}
	return p, nil
}

func finite(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: field, Reason: "must be a number"}
	}
	return v, nil
}

func positive(field, raw string) (float64, error) {
	v, err := finite(field, raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &FieldError{Field: field, Reason: "must be positive"}
	}
	return v, nil
}
