package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailbook",
		Subsystem: "workouts",
		Name:      "created_total",
		Help:      "Workouts created from form submissions, by type.",
	}, []string{"type"})
	submissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trailbook",
		Subsystem: "workouts",
		Name:      "rejected_submissions_total",
		Help:      "Form submissions rejected by input validation.",
	})
	interactions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trailbook",
		Subsystem: "workouts",
		Name:      "interactions_total",
		Help:      "List entry selections that matched a stored workout.",
	})
	storedWorkouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trailbook",
		Subsystem: "workouts",
		Name:      "stored",
		Help:      "Workouts currently held in memory.",
	})
	persistenceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailbook",
		Subsystem: "persistence",
		Name:      "errors_total",
		Help:      "Failed persistence operations, by operation.",
	}, []string{"op"})
	corruptLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trailbook",
		Subsystem: "persistence",
		Name:      "corrupt_loads_total",
		Help:      "Loads that found persisted data but could not decode it.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, submissionsRejected, interactions,
		storedWorkouts, persistenceErrors, corruptLoads)
}

// RecordWorkoutCreated counts a new workout of the given type.
func RecordWorkoutCreated(kind string) {
	workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordSubmissionRejected counts a submission that failed validation.
func RecordSubmissionRejected() {
	submissionsRejected.Inc()
}

// RecordInteraction counts a list selection.
func RecordInteraction() {
	interactions.Inc()
}

// SetStoredWorkouts reports the in-memory store size.
func SetStoredWorkouts(n int) {
	storedWorkouts.Set(float64(n))
}

// RecordPersistenceError counts a failed save, load or clear.
func RecordPersistenceError(op string) {
	persistenceErrors.WithLabelValues(op).Inc()
}

// RecordCorruptLoad counts a load that found undecodable data.
func RecordCorruptLoad() {
	corruptLoads.Inc()
}
