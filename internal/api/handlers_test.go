package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"example.com/workoutcal/internal/calendar"
	"example.com/workoutcal/internal/domain"
	"example.com/workoutcal/internal/merge"
)

const hikingWorkout = `{
	"name": "Hiking",
	"start": "2021-09-26T20:00:00",
	"end": "2021-09-26T20:15:00",
	"activeEnergy": {"qty": 100},
	"stepCadence": {"qty": 30},
	"distance": {"qty": 1},
	"speed": {"qty": 4},
	"avgHeartRate": {"qty": 120},
	"maxHeartRate": {"qty": 140}
}`

func TestIngestBatch(t *testing.T) {
	handler, cal, store := newTestHandler(t)

	body := `{"workouts": [` + hikingWorkout + `, {"name": "Hiking"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ingest(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ingestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Received != 2 || resp.New != 1 || resp.Rejected != 1 || resp.Seen != 0 || resp.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if cal.Len() != 1 {
		t.Fatalf("expected 1 calendar event got %d", cal.Len())
	}
	if store.rowCount() != 1 {
		t.Fatalf("expected 1 stored row got %d", store.rowCount())
	}
}

func TestIngestSameBatchTwice(t *testing.T) {
	handler, cal, store := newTestHandler(t)
	body := `{"workouts": [` + hikingWorkout + `]}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.ingest(rr, req)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("merge %d: expected 202 got %d", i, rr.Code)
		}
	}

	if store.rowCount() != 1 {
		t.Fatalf("expected 1 stored row got %d", store.rowCount())
	}
	if cal.Len() != 1 {
		t.Fatalf("expected 1 calendar event got %d", cal.Len())
	}
}

func TestIngestStoredButDisallowedType(t *testing.T) {
	handler, cal, store := newTestHandler(t)

	yoga := strings.Replace(hikingWorkout, `"Hiking"`, `"Yoga"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader(`{"workouts": [`+yoga+`]}`))
	rr := httptest.NewRecorder()
	handler.ingest(rr, req)

	var resp ingestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// Disallowed types are persisted (seen) but produce no event.
	if resp.New != 1 || resp.Rejected != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if store.rowCount() != 1 {
		t.Fatalf("expected 1 stored row got %d", store.rowCount())
	}
	if cal.Len() != 0 {
		t.Fatalf("expected no calendar events got %d", cal.Len())
	}
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	handler.ingest(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestIngestMethodNotAllowed(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
	rr := httptest.NewRecorder()
	handler.ingest(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestFeedServesICS(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	ingestReq := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader(`{"workouts": [`+hikingWorkout+`]}`))
	handler.ingest(httptest.NewRecorder(), ingestReq)

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	rr := httptest.NewRecorder()
	handler.feed(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	feed := rr.Body.String()
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "SUMMARY:Hiking") {
		t.Fatalf("unexpected feed body: %s", feed)
	}
}

func newTestHandler(t *testing.T) (*Handler, *calendar.Calendar, *memStore) {
	t.Helper()
	store := &memStore{rows: make(map[string]json.RawMessage)}
	logger := log.New(testWriter{t}, "", 0)
	coord := merge.NewCoordinator(store, merge.WithLogger(logger))
	cal := calendar.New("Workouts")
	return NewHandler(coord, cal, WithLogger(logger)), cal, store
}

// memStore is a concurrency-safe in-memory merge.Store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]json.RawMessage
}

func (s *memStore) Exists(_ context.Context, startKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[startKey]
	return ok, nil
}

func (s *memStore) Insert(_ context.Context, rec domain.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.StartKey] = rec.Payload
	return nil
}

func (s *memStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
