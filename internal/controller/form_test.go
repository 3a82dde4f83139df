package controller

import (
	"errors"
	"testing"

	"github.com/claude/trailbook/internal/models"
)

// TestParseForm verifies the symmetric validation rules for both types.
func TestParseForm(t *testing.T) {
	cases := []struct {
		name    string
		in      FormInput
		wantErr string
	}{
		{"running ok", FormInput{Type: "running", Distance: "5", Duration: "30", Cadence: "180"}, ""},
		{"cycling ok", FormInput{Type: "cycling", Distance: "20", Duration: "60", Elevation: "300"}, ""},
		{"cycling downhill", FormInput{Type: "cycling", Distance: "20", Duration: "60", Elevation: "-250"}, ""},
		{"cycling flat", FormInput{Type: "cycling", Distance: "20", Duration: "60", Elevation: "0"}, ""},
		{"unknown type", FormInput{Type: "rowing", Distance: "5", Duration: "30"}, "type"},
		{"zero distance", FormInput{Type: "running", Distance: "0", Duration: "30", Cadence: "180"}, "distance"},
		{"negative duration", FormInput{Type: "cycling", Distance: "5", Duration: "-1", Elevation: "0"}, "duration"},
		{"empty distance", FormInput{Type: "running", Distance: "", Duration: "30", Cadence: "180"}, "distance"},
		{"text duration", FormInput{Type: "running", Distance: "5", Duration: "abc", Cadence: "180"}, "duration"},
		{"infinite distance", FormInput{Type: "running", Distance: "Inf", Duration: "30", Cadence: "180"}, "distance"},
		{"NaN elevation", FormInput{Type: "cycling", Distance: "5", Duration: "30", Elevation: "NaN"}, "elevation"},
		{"empty elevation", FormInput{Type: "cycling", Distance: "5", Duration: "30"}, "elevation"},
		{"zero cadence", FormInput{Type: "running", Distance: "5", Duration: "30", Cadence: "0"}, "cadence"},
		{"fractional cadence", FormInput{Type: "running", Distance: "5", Duration: "30", Cadence: "170.5"}, "cadence"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.in.parse()
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != c.wantErr {
				t.Errorf("field error = %v, want field %q", err, c.wantErr)
			}
		})
	}
}

// TestParseFormValues verifies parsed numbers, including surrounding whitespace.
func TestParseFormValues(t *testing.T) {
	p, err := FormInput{Type: " Running ", Distance: " 10.5 ", Duration: "52", Cadence: "176"}.parse()
	if err != nil {
		t.Fatal(err)
	}
	if p.kind != models.KindRunning || p.distanceKm != 10.5 || p.durationM != 52 || p.cadence != 176 {
		t.Errorf("parsed = %+v", p)
	}
}
