// Package api exposes HTTP handlers for workout ingestion and the calendar
// feed.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync/atomic"

	"example.com/workoutcal/internal/calendar"
	"example.com/workoutcal/internal/domain"
	"example.com/workoutcal/internal/merge"
	"example.com/workoutcal/internal/observability"
)

// Handler coordinates HTTP requests with the merge pipeline and the live
// calendar.
type Handler struct {
	merger *merge.Coordinator
	cal    *calendar.Calendar
	logger *log.Logger
}

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithLogger overrides the logger used to report dropped records.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler builds a Handler.
func NewHandler(merger *merge.Coordinator, cal *calendar.Calendar, opts ...Option) *Handler {
	h := &Handler{
		merger: merger,
		cal:    cal,
		logger: log.New(log.Writer(), "[api] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.ingest)
	mux.HandleFunc("/calendar.ics", h.feed)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ingestRequest is the batch envelope posted by the exporter app. Each
// element stays raw JSON so it can be persisted verbatim.
type ingestRequest struct {
	Workouts []json.RawMessage `json:"workouts"`
}

// ingestResponse summarises the per-record outcomes of one batch.
type ingestResponse struct {
	Received int `json:"received"`
	New      int `json:"new"`
	Seen     int `json:"seen"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	records := make([]domain.RawRecord, 0, len(req.Workouts))
	rejected := 0
	for _, payload := range req.Workouts {
		key, ok := domain.ExtractStartKey(payload)
		if !ok {
			rejected++
			h.logger.Printf("dropping workout with no usable start field")
			continue
		}
		records = append(records, domain.RawRecord{StartKey: key, Payload: payload})
	}

	// The callback runs concurrently, one goroutine per new record.
	var callbackRejects atomic.Int64
	res := h.merger.Merge(r.Context(), records, func(rec domain.RawRecord) {
		workout, err := domain.DecodeWorkout(rec.Payload)
		if err != nil {
			callbackRejects.Add(1)
			h.logger.Printf("stored workout produced no event (start=%s): %v", rec.StartKey, err)
			return
		}
		event, ok := domain.NewEvent(workout)
		if !ok {
			callbackRejects.Add(1)
			h.logger.Printf("stored workout produced no event (start=%s): type %q not recognized", rec.StartKey, workout.Name)
			return
		}
		h.cal.Add(*event)
	})
	rejected += int(callbackRejects.Load())

	observability.RecordIngested(observability.OutcomeNew, res.New)
	observability.RecordIngested(observability.OutcomeSeen, res.Seen)
	observability.RecordIngested(observability.OutcomeRejected, rejected)
	observability.RecordIngested(observability.OutcomeFailed, res.Failed)
	observability.SetCalendarSize(h.cal.Len())

	writeJSON(w, http.StatusAccepted, ingestResponse{
		Received: len(req.Workouts),
		New:      res.New,
		Seen:     res.Seen,
		Rejected: rejected,
		Failed:   res.Failed,
	})
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	observability.RecordFeedServed()
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = io.WriteString(w, h.cal.ICS())
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
