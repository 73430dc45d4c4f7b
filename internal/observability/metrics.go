package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record outcomes reported by the ingestion pipeline.
const (
	OutcomeNew      = "new"
	OutcomeSeen     = "seen"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	ingestedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "ingest",
		Name:      "records_total",
		Help:      "Number of ingested workout records grouped by outcome.",
	}, []string{"outcome"})

	feedRequestCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "feed",
		Name:      "requests_total",
		Help:      "Number of calendar feed documents served.",
	})

	calendarEventsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutcal",
		Subsystem: "calendar",
		Name:      "events",
		Help:      "Number of events in the live calendar.",
	})

	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout row written.",
	})
)

func init() {
	prometheus.MustRegister(ingestedCounter, feedRequestCounter, calendarEventsGauge, workoutPersistGauge)
}

// RecordIngested adds n records to the outcome counter.
func RecordIngested(outcome string, n int) {
	if n <= 0 {
		return
	}
	ingestedCounter.WithLabelValues(outcome).Add(float64(n))
}

// RecordFeedServed counts one served feed document.
func RecordFeedServed() {
	feedRequestCounter.Inc()
}

// SetCalendarSize updates the live event count gauge.
func SetCalendarSize(n int) {
	calendarEventsGauge.Set(float64(n))
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}
