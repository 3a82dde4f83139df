package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/export"
	"github.com/claude/trailbook/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// gpxCreator is the creator attribute written into exported GPX files.
const gpxCreator = "trailbook"

// coordsBody is a lat/lng pair in a request body. Both fields are required.
type coordsBody struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (b coordsBody) coords() (models.Coords, error) {
	if b.Lat == nil || b.Lng == nil {
		return models.Coords{}, errors.New("lat and lng are required")
	}
	c := models.Coords{Lat: *b.Lat, Lng: *b.Lng}
	if !c.Valid() {
		return models.Coords{}, errors.New("lat/lng out of range")
	}
	return c, nil
}

type locationRequest struct {
	coordsBody
	Error string `json:"error"`
}

type recordRequest struct {
	coordsBody
	controller.FormInput
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts := s.ctrl.Workouts()
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	workout, found := s.ctrl.Workout(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Snapshot())
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Error != "" {
		s.ctrl.LocationFailed(fmt.Errorf("browser geolocation: %s", req.Error))
		writeJSON(w, http.StatusOK, s.ctrl.Status())
		return
	}
	coords, err := req.coords()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.ctrl.LocationResolved(coords)
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var req coordsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	coords, err := req.coords()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ctrl.MapClicked(coords); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleFormType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	kind, err := models.ParseKind(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.ctrl.ToggleType(kind)
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in controller.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	workout, err := s.ctrl.Submit(r.Context(), in)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	coords, err := req.coords()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workout, err := s.ctrl.Record(r.Context(), coords, req.FormInput)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, controller.ErrInvalidInput):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, controller.ErrNoPendingLocation), errors.Is(err, controller.ErrMapNotReady):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("submit error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	workout, found := s.ctrl.EntryClicked(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Reset(r.Context()); err != nil {
		s.log.Error("reset error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportGPX(w http.ResponseWriter, r *http.Request) {
	data, err := export.GPX(s.ctrl.Workouts(), gpxCreator)
	if err != nil {
		s.log.Error("gpx export error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="trailbook.gpx"`)
	w.Write(data)
}

// workoutID reads and checks the {id} URL parameter, writing a 400 on failure.
func workoutID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
