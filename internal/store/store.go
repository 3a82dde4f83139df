// Package store holds the session's workouts in insertion order.
package store

import "github.com/claude/trailbook/internal/models"

// Store is an append-only ordered list of workouts. It is not safe for
// concurrent use; the controller serializes access.
type Store struct {
	workouts []*models.Workout
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Add appends a workout. No dedup, no size limit.
func (s *Store) Add(w *models.Workout) {
	s.workouts = append(s.workouts, w)
}

// FindByID returns the stored workout with the given id. The returned pointer
// aliases the stored record so RecordInteraction is visible to later reads.
func (s *Store) FindByID(id string) (*models.Workout, bool) {
	for _, w := range s.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// All returns copies of every workout in insertion order.
func (s *Store) All() []models.Workout {
	out := make([]models.Workout, len(s.workouts))
	for i, w := range s.workouts {
		out[i] = w.Clone()
	}
	return out
}

// Replace discards the current contents and takes ownership of ws.
// Used only when hydrating from storage.
func (s *Store) Replace(ws []models.Workout) {
	s.workouts = make([]*models.Workout, len(ws))
	for i := range ws {
		w := ws[i]
		s.workouts[i] = &w
	}
}

// Len returns the number of stored workouts.
func (s *Store) Len() int {
	return len(s.workouts)
}
